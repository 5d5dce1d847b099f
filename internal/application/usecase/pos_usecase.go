package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

// PosUseCase casos de uso de puntos de venta y sus secuencias de numeración.
type PosUseCase struct {
	repo repository.PointOfSaleRepository
}

func NewPosUseCase(repo repository.PointOfSaleRepository) *PosUseCase {
	return &PosUseCase{repo: repo}
}

// Create da de alta un punto de venta. Un punto electrónico exige servicio
// (wsfe o wsfex) y nace con una secuencia en 1 por cada tipo de comprobante
// declarado.
func (uc *PosUseCase) Create(companyID string, in dto.CreatePosRequest) (*dto.PosResponse, error) {
	if in.Type == entity.POSElectronico {
		if in.Service != entity.ServicioWSFE && in.Service != entity.ServicioWSFEX {
			return nil, fmt.Errorf("%w: punto de venta electrónico requiere servicio wsfe o wsfex", domain.ErrInvalidInput)
		}
		if len(in.VoucherTypes) == 0 {
			return nil, fmt.Errorf("%w: punto de venta electrónico requiere al menos un tipo de comprobante", domain.ErrInvalidInput)
		}
	} else if in.Service != "" {
		return nil, fmt.Errorf("%w: servicio AFIP solo aplica a puntos de venta electrónicos", domain.ErrInvalidInput)
	}
	for _, code := range in.VoucherTypes {
		if afip.DescripcionComprobante(code) == "" {
			return nil, fmt.Errorf("%w: tipo de comprobante desconocido %q", domain.ErrInvalidInput, code)
		}
	}

	now := time.Now()
	pos := &entity.PointOfSale{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Number:    in.Number,
		Type:      in.Type,
		Service:   in.Service,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(pos); err != nil {
		return nil, err
	}
	for _, code := range in.VoucherTypes {
		seq := &entity.VoucherSequence{
			ID:              uuid.New().String(),
			PosID:           pos.ID,
			VoucherTypeCode: code,
			NextNumber:      1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := uc.repo.CreateSequence(seq); err != nil {
			return nil, err
		}
	}
	return entityToPosResponse(pos), nil
}

// GetByID obtiene un punto de venta por ID, verificando la empresa.
func (uc *PosUseCase) GetByID(companyID, id string) (*dto.PosResponse, error) {
	pos, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if pos.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return entityToPosResponse(pos), nil
}

// ListByCompany devuelve los puntos de venta de la empresa.
func (uc *PosUseCase) ListByCompany(companyID string) (*dto.PosListResponse, error) {
	list, err := uc.repo.ListByCompany(companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PosResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *entityToPosResponse(p))
	}
	return &dto.PosListResponse{Items: items}, nil
}

// GetSequence consulta la secuencia de un tipo de comprobante del punto de venta.
func (uc *PosUseCase) GetSequence(companyID, posID, voucherTypeCode string) (*dto.SequenceResponse, error) {
	pos, err := uc.repo.GetByID(posID)
	if err != nil {
		return nil, err
	}
	if pos.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	seq, err := uc.repo.GetSequence(posID, voucherTypeCode)
	if err != nil {
		return nil, err
	}
	return &dto.SequenceResponse{
		VoucherTypeCode: seq.VoucherTypeCode,
		NextNumber:      seq.NextNumber,
	}, nil
}

func entityToPosResponse(p *entity.PointOfSale) *dto.PosResponse {
	if p == nil {
		return nil
	}
	return &dto.PosResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Number:    p.Number,
		Type:      p.Type,
		Service:   p.Service,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
