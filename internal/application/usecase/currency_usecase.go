package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
)

// CurrencyUseCase casos de uso de monedas y sus códigos AFIP.
type CurrencyUseCase struct {
	repo repository.CurrencyRepository
}

func NewCurrencyUseCase(repo repository.CurrencyRepository) *CurrencyUseCase {
	return &CurrencyUseCase{repo: repo}
}

// Create registra una moneda con su código AFIP y tasa inicial contra ARS.
func (uc *CurrencyUseCase) Create(in dto.CreateCurrencyRequest) (*dto.CurrencyResponse, error) {
	rate, err := decimal.NewFromString(in.Rate)
	if err != nil {
		return nil, fmt.Errorf("%w: tasa inválida %q", domain.ErrInvalidInput, in.Rate)
	}
	if rate.Sign() <= 0 {
		return nil, fmt.Errorf("%w: la tasa debe ser positiva", domain.ErrInvalidInput)
	}
	now := time.Now()
	currency := &entity.Currency{
		ID:        uuid.New().String(),
		ISOCode:   in.ISOCode,
		AfipCode:  in.AfipCode,
		Rate:      rate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(currency); err != nil {
		return nil, err
	}
	return entityToCurrencyResponse(currency), nil
}

// GetByISO obtiene una moneda por código ISO.
func (uc *CurrencyUseCase) GetByISO(iso string) (*dto.CurrencyResponse, error) {
	currency, err := uc.repo.GetByISO(iso)
	if err != nil {
		return nil, err
	}
	return entityToCurrencyResponse(currency), nil
}

// List devuelve todas las monedas registradas.
func (uc *CurrencyUseCase) List() (*dto.CurrencyListResponse, error) {
	list, err := uc.repo.List()
	if err != nil {
		return nil, err
	}
	items := make([]dto.CurrencyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCurrencyResponse(c))
	}
	return &dto.CurrencyListResponse{Items: items}, nil
}

func entityToCurrencyResponse(c *entity.Currency) *dto.CurrencyResponse {
	if c == nil {
		return nil
	}
	return &dto.CurrencyResponse{
		ID:        c.ID,
		ISOCode:   c.ISOCode,
		AfipCode:  c.AfipCode,
		Rate:      c.Rate.String(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
