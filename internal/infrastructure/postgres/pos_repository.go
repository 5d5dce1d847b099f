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

var _ repository.PointOfSaleRepository = (*PosRepo)(nil)

// PosRepo implementación del puerto PointOfSaleRepository sobre PostgreSQL.
// Administra también las secuencias de numeración por tipo de comprobante.
type PosRepo struct {
	pool *pgxpool.Pool
}

func NewPosRepository(pool *pgxpool.Pool) *PosRepo {
	return &PosRepo{pool: pool}
}

const posColumns = `id, company_id, number, type, afip_service, created_at, updated_at`

// Create persiste un nuevo punto de venta.
func (r *PosRepo) Create(pos *entity.PointOfSale) error {
	if pos.ID == "" {
		pos.ID = uuid.New().String()
	}
	query := `
		INSERT INTO points_of_sale (` + posColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(context.Background(), query,
		pos.ID, pos.CompanyID, pos.Number, pos.Type, nullIfEmpty(pos.Service),
		pos.CreatedAt, pos.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("punto de venta %d ya registrado: %w", pos.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert pos: %w", err)
	}
	return nil
}

func (r *PosRepo) scanPos(row interface{ Scan(...any) error }) (*entity.PointOfSale, error) {
	var p entity.PointOfSale
	var service *string
	err := row.Scan(&p.ID, &p.CompanyID, &p.Number, &p.Type, &service, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Service = derefStr(service)
	return &p, nil
}

// GetByID obtiene un punto de venta por ID.
func (r *PosRepo) GetByID(id string) (*entity.PointOfSale, error) {
	query := `SELECT ` + posColumns + ` FROM points_of_sale WHERE id = $1`
	p, err := r.scanPos(r.pool.QueryRow(context.Background(), query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get pos: %w", err)
	}
	return p, nil
}

// ListByCompany devuelve los puntos de venta de una empresa.
func (r *PosRepo) ListByCompany(companyID string) ([]*entity.PointOfSale, error) {
	query := `SELECT ` + posColumns + `
		FROM points_of_sale WHERE company_id = $1 ORDER BY number`
	rows, err := r.pool.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list pos: %w", err)
	}
	defer rows.Close()

	var list []*entity.PointOfSale
	for rows.Next() {
		p, err := r.scanPos(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pos: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza un punto de venta existente.
func (r *PosRepo) Update(pos *entity.PointOfSale) error {
	query := `
		UPDATE points_of_sale
		SET number = $2, type = $3, afip_service = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.pool.Exec(context.Background(), query,
		pos.ID, pos.Number, pos.Type, nullIfEmpty(pos.Service), pos.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update pos: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── Secuencias de numeración ──

// CreateSequence registra la secuencia inicial de un tipo de comprobante.
func (r *PosRepo) CreateSequence(seq *entity.VoucherSequence) error {
	if seq.ID == "" {
		seq.ID = uuid.New().String()
	}
	query := `
		INSERT INTO voucher_sequences (id, pos_id, voucher_type_code, next_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(context.Background(), query,
		seq.ID, seq.PosID, seq.VoucherTypeCode, seq.NextNumber,
		seq.CreatedAt, seq.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.SequenceError{TipoComprobante: seq.VoucherTypeCode, Duplicada: true}
		}
		return fmt.Errorf("insert sequence: %w", err)
	}
	return nil
}

// GetSequence devuelve la secuencia de (pos, tipo). Una secuencia faltante o
// duplicada es un error de configuración del punto de venta (SequenceError).
func (r *PosRepo) GetSequence(posID, voucherTypeCode string) (*entity.VoucherSequence, error) {
	query := `
		SELECT id, pos_id, voucher_type_code, next_number, created_at, updated_at
		FROM voucher_sequences
		WHERE pos_id = $1 AND voucher_type_code = $2`
	rows, err := r.pool.Query(context.Background(), query, posID, voucherTypeCode)
	if err != nil {
		return nil, fmt.Errorf("get sequence: %w", err)
	}
	defer rows.Close()

	var found []*entity.VoucherSequence
	for rows.Next() {
		var s entity.VoucherSequence
		if err := rows.Scan(&s.ID, &s.PosID, &s.VoucherTypeCode, &s.NextNumber, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		found = append(found, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get sequence: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, &domain.SequenceError{TipoComprobante: voucherTypeCode}
	case 1:
		return found[0], nil
	default:
		return nil, &domain.SequenceError{TipoComprobante: voucherTypeCode, Duplicada: true}
	}
}

// AllocateNext asigna atómicamente el próximo número del comprobante para
// (pos, tipo). El UPDATE con RETURNING serializa a los emisores concurrentes.
func (r *PosRepo) AllocateNext(ctx context.Context, posID, voucherTypeCode string) (int64, error) {
	query := `
		UPDATE voucher_sequences
		SET next_number = next_number + 1, updated_at = now()
		WHERE pos_id = $1 AND voucher_type_code = $2
		RETURNING next_number - 1`
	var assigned int64
	err := r.pool.QueryRow(ctx, query, posID, voucherTypeCode).Scan(&assigned)
	if err != nil {
		if isNoRows(err) {
			return 0, &domain.SequenceError{TipoComprobante: voucherTypeCode}
		}
		return 0, fmt.Errorf("allocate number: %w", err)
	}
	return assigned, nil
}
