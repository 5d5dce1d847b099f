package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/facturacion-afip/internal/application/auth"
	"github.com/jhoicas/facturacion-afip/internal/application/facturacion"
	"github.com/jhoicas/facturacion-afip/internal/application/usecase"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/padron"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsaa"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsfe"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsfex"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/facturacion-afip/internal/interfaces/http"
	"github.com/jhoicas/facturacion-afip/pkg/config"
	"github.com/jhoicas/facturacion-afip/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("afip_env", cfg.AFIP.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	posRepo := postgres.NewPosRepository(pool)
	partyRepo := postgres.NewPartyRepository(pool)
	currencyRepo := postgres.NewCurrencyRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Clientes AFIP. El entorno (homologación/producción) es un atributo de
	// cada empresa: WSAA y los endpoints WSFEv1/WSFEXv1 lo resuelven por llamada.
	wsaaClient := wsaa.NewClient(cfg.AFIP.CacheDir, cfg.AFIP.Timeout)
	wsfeClient := wsfe.NewClient(cfg.AFIP.Timeout)
	wsfexClient := wsfex.NewClient(cfg.AFIP.Timeout)
	padronClient := padron.NewClient(cfg.AFIP.PadronURL, cfg.AFIP.Timeout)

	engine := facturacion.NewUseCase(
		log,
		companyRepo, posRepo, partyRepo, currencyRepo, invoiceRepo, transactionRepo,
		wsaaClient, wsfeClient, wsfexClient,
	)

	companyUC := usecase.NewCompanyUseCase(companyRepo, wsaaClient)
	posUC := usecase.NewPosUseCase(posRepo)
	partyUC := usecase.NewPartyUseCase(partyRepo)
	currencyUC := usecase.NewCurrencyUseCase(currencyRepo)
	invoiceUC := usecase.NewInvoiceUseCase(invoiceRepo, transactionRepo, partyRepo, posRepo, currencyRepo, txRunner)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // la autorización espera la respuesta de AFIP
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:  companyUC,
		PosUC:      posUC,
		PartyUC:    partyUC,
		CurrencyUC: currencyUC,
		InvoiceUC:  invoiceUC,
		Engine:     engine,
		AuthUC:     authUC,
		Padron:     padronClient,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
