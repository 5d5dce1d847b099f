package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo implementación del puerto PartyRepository sobre PostgreSQL.
type PartyRepo struct {
	pool *pgxpool.Pool
}

func NewPartyRepository(pool *pgxpool.Pool) *PartyRepo {
	return &PartyRepo{pool: pool}
}

const partyColumns = `id, company_id, name, iva_condition, document_type, document_number,
	       vat_country, street, street_bis, zip, city, email, created_at, updated_at`

// Create persiste un nuevo tercero.
func (r *PartyRepo) Create(party *entity.Party) error {
	if party.ID == "" {
		party.ID = uuid.New().String()
	}
	query := `
		INSERT INTO parties (` + partyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.pool.Exec(context.Background(), query,
		party.ID, party.CompanyID, party.Name, party.IVACondition,
		party.DocumentType, party.DocumentNumber, party.VatCountry,
		party.Street, party.StreetBis, party.Zip, party.City, party.Email,
		party.CreatedAt, party.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}

func (r *PartyRepo) scanParty(row interface{ Scan(...any) error }) (*entity.Party, error) {
	var p entity.Party
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.IVACondition, &p.DocumentType,
		&p.DocumentNumber, &p.VatCountry, &p.Street, &p.StreetBis,
		&p.Zip, &p.City, &p.Email, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un tercero por ID.
func (r *PartyRepo) GetByID(id string) (*entity.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE id = $1`
	p, err := r.scanParty(r.pool.QueryRow(context.Background(), query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return p, nil
}

// ListByCompany devuelve los terceros de una empresa con paginación.
func (r *PartyRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Party, error) {
	query := `SELECT ` + partyColumns + `
		FROM parties WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	var list []*entity.Party
	for rows.Next() {
		p, err := r.scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza un tercero existente.
func (r *PartyRepo) Update(party *entity.Party) error {
	query := `
		UPDATE parties
		SET name = $2, iva_condition = $3, document_type = $4, document_number = $5,
		    vat_country = $6, street = $7, street_bis = $8, zip = $9, city = $10,
		    email = $11, updated_at = $12
		WHERE id = $1`
	cmd, err := r.pool.Exec(context.Background(), query,
		party.ID, party.Name, party.IVACondition, party.DocumentType,
		party.DocumentNumber, party.VatCountry, party.Street, party.StreetBis,
		party.Zip, party.City, party.Email, party.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update party: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
