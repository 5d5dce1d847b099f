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

// PartyUseCase casos de uso de clientes/terceros con su perfil fiscal.
type PartyUseCase struct {
	repo repository.PartyRepository
}

func NewPartyUseCase(repo repository.PartyRepository) *PartyUseCase {
	return &PartyUseCase{repo: repo}
}

// Create crea un tercero. Un cliente local lleva condición frente al IVA; si
// el documento es un CUIT se valida el dígito verificador.
func (uc *PartyUseCase) Create(companyID string, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	if in.IVACondition != "" && !afip.CondicionesIVA[in.IVACondition] {
		return nil, fmt.Errorf("%w: condición frente al IVA desconocida %q", domain.ErrInvalidInput, in.IVACondition)
	}
	docNumber := in.DocumentNumber
	if in.DocumentType == "80" && docNumber != "" {
		normalizado, err := afip.NormalizarCUIT(docNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		docNumber = normalizado
	}
	vatCountry := in.VatCountry
	if vatCountry == "" {
		vatCountry = "AR"
	}

	now := time.Now()
	party := &entity.Party{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		Name:           in.Name,
		IVACondition:   in.IVACondition,
		DocumentType:   in.DocumentType,
		DocumentNumber: docNumber,
		VatCountry:     vatCountry,
		Street:         in.Street,
		StreetBis:      in.StreetBis,
		Zip:            in.Zip,
		City:           in.City,
		Email:          in.Email,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(party); err != nil {
		return nil, err
	}
	return entityToPartyResponse(party), nil
}

// GetByID obtiene un tercero por ID, verificando la empresa.
func (uc *PartyUseCase) GetByID(companyID, id string) (*dto.PartyResponse, error) {
	party, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if party.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return entityToPartyResponse(party), nil
}

// Update actualiza un tercero existente.
func (uc *PartyUseCase) Update(companyID, id string, in dto.UpdatePartyRequest) (*dto.PartyResponse, error) {
	party, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if party.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		party.Name = *in.Name
	}
	if in.IVACondition != nil {
		if *in.IVACondition != "" && !afip.CondicionesIVA[*in.IVACondition] {
			return nil, fmt.Errorf("%w: condición frente al IVA desconocida %q", domain.ErrInvalidInput, *in.IVACondition)
		}
		party.IVACondition = *in.IVACondition
	}
	if in.DocumentType != nil {
		party.DocumentType = *in.DocumentType
	}
	if in.DocumentNumber != nil {
		num := *in.DocumentNumber
		if party.DocumentType == "80" && num != "" {
			normalizado, err := afip.NormalizarCUIT(num)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			num = normalizado
		}
		party.DocumentNumber = num
	}
	if in.VatCountry != nil {
		party.VatCountry = *in.VatCountry
	}
	if in.Street != nil {
		party.Street = *in.Street
	}
	if in.StreetBis != nil {
		party.StreetBis = *in.StreetBis
	}
	if in.Zip != nil {
		party.Zip = *in.Zip
	}
	if in.City != nil {
		party.City = *in.City
	}
	if in.Email != nil {
		party.Email = *in.Email
	}
	party.UpdatedAt = time.Now()
	if err := uc.repo.Update(party); err != nil {
		return nil, err
	}
	return entityToPartyResponse(party), nil
}

// ListByCompany devuelve los terceros de la empresa con paginación.
func (uc *PartyUseCase) ListByCompany(companyID string, limit, offset int) (*dto.PartyListResponse, error) {
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PartyResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *entityToPartyResponse(p))
	}
	return &dto.PartyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToPartyResponse(p *entity.Party) *dto.PartyResponse {
	if p == nil {
		return nil
	}
	return &dto.PartyResponse{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		Name:           p.Name,
		IVACondition:   p.IVACondition,
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		VatCountry:     p.VatCountry,
		Street:         p.Street,
		StreetBis:      p.StreetBis,
		Zip:            p.Zip,
		City:           p.City,
		Email:          p.Email,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
