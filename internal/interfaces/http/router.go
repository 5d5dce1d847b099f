package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-afip/internal/application/auth"
	"github.com/jhoicas/facturacion-afip/internal/application/facturacion"
	"github.com/jhoicas/facturacion-afip/internal/application/usecase"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/padron"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC  *usecase.CompanyUseCase
	PosUC      *usecase.PosUseCase
	PartyUC    *usecase.PartyUseCase
	CurrencyUC *usecase.CurrencyUseCase
	InvoiceUC  *usecase.InvoiceUseCase
	Engine     *facturacion.UseCase
	AuthUC     *auth.AuthUseCase
	Padron     padron.Lookup
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público el alta inicial; todo lo demás protegido)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", AuthMiddleware(deps.JWTSecret), RequireRole(entity.RoleAdmin), companyHandler.Update)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogos AFIP (protegido, solo lectura)
	catalogues := protected.Group("/catalogues")
	catalogueHandler := NewCatalogueHandler()
	catalogues.Get("/voucher-types", catalogueHandler.VoucherTypes)
	catalogues.Get("/document-types", catalogueHandler.DocumentTypes)
	catalogues.Get("/incoterms", catalogueHandler.Incoterms)

	// Puntos de venta (protegido; el alta es de admin)
	pos := protected.Group("/pos")
	posHandler := NewPosHandler(deps.PosUC)
	pos.Post("/", RequireRole(entity.RoleAdmin), posHandler.Create)
	pos.Get("/", posHandler.List)
	pos.Get("/:id", posHandler.GetByID)
	pos.Get("/:id/sequence", posHandler.GetSequence)

	// Terceros (protegido)
	parties := protected.Group("/parties")
	partyHandler := NewPartyHandler(deps.PartyUC, deps.Padron)
	parties.Post("/", partyHandler.Create)
	parties.Get("/", partyHandler.List)
	parties.Get("/padron/:cuit", partyHandler.ConsultarPadron)
	parties.Get("/:id", partyHandler.GetByID)
	parties.Put("/:id", partyHandler.Update)

	// Padrón AFIP (protegido)
	protected.Get("/padron/:cuit", partyHandler.ConsultarPadron)

	// Monedas (protegido; el refresh de cotización es de admin o contador)
	currencies := protected.Group("/currencies")
	currencyHandler := NewCurrencyHandler(deps.CurrencyUC, deps.Engine)
	currencies.Post("/", RequireRole(entity.RoleAdmin), currencyHandler.Create)
	currencies.Get("/", currencyHandler.List)
	currencies.Get("/dol-rate", currencyHandler.DolRate)
	currencies.Post("/dolar/refresh", RequireRole(entity.RoleAdmin, entity.RoleContador), currencyHandler.RefreshDolar)

	// Facturas (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.Engine)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/authorize", invoiceHandler.Authorize)
	invoices.Get("/:id/transactions", invoiceHandler.ListTransactions)
}
