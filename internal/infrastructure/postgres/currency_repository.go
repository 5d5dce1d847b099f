package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
)

var _ repository.CurrencyRepository = (*CurrencyRepo)(nil)

// CurrencyRepo implementación del puerto CurrencyRepository sobre PostgreSQL.
type CurrencyRepo struct {
	pool *pgxpool.Pool
}

func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepo {
	return &CurrencyRepo{pool: pool}
}

// Create persiste una nueva moneda.
func (r *CurrencyRepo) Create(currency *entity.Currency) error {
	if currency.ID == "" {
		currency.ID = uuid.New().String()
	}
	query := `
		INSERT INTO currencies (id, iso_code, afip_code, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(context.Background(), query,
		currency.ID, currency.ISOCode, currency.AfipCode, currency.Rate,
		currency.CreatedAt, currency.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("moneda %s ya registrada: %w", currency.ISOCode, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert currency: %w", err)
	}
	return nil
}

// GetByISO obtiene una moneda por código ISO.
func (r *CurrencyRepo) GetByISO(iso string) (*entity.Currency, error) {
	query := `
		SELECT id, iso_code, afip_code, rate, created_at, updated_at
		FROM currencies WHERE iso_code = $1`
	var c entity.Currency
	err := r.pool.QueryRow(context.Background(), query, iso).Scan(
		&c.ID, &c.ISOCode, &c.AfipCode, &c.Rate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get currency: %w", err)
	}
	return &c, nil
}

// List devuelve todas las monedas registradas.
func (r *CurrencyRepo) List() ([]*entity.Currency, error) {
	query := `
		SELECT id, iso_code, afip_code, rate, created_at, updated_at
		FROM currencies ORDER BY iso_code`
	rows, err := r.pool.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Currency
	for rows.Next() {
		var c entity.Currency
		if err := rows.Scan(&c.ID, &c.ISOCode, &c.AfipCode, &c.Rate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// UpdateRate actualiza la tasa de la moneda contra ARS.
func (r *CurrencyRepo) UpdateRate(iso string, rate decimal.Decimal) error {
	query := `UPDATE currencies SET rate = $2, updated_at = now() WHERE iso_code = $1`
	cmd, err := r.pool.Exec(context.Background(), query, iso, rate)
	if err != nil {
		return fmt.Errorf("update rate: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
