package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsaa"
	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

// CompanyUseCase aplica reglas de negocio para empresas emisoras: validación
// del CUIT, de la condición frente al IVA y de las credenciales WSAA.
type CompanyUseCase struct {
	repo repository.CompanyRepository
	auth wsaa.Authenticator // nil deshabilita el round-trip de validación
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia y
// el autenticador WSAA para validar credenciales al cargarlas.
func NewCompanyUseCase(repo repository.CompanyRepository, auth wsaa.Authenticator) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, auth: auth}
}

// Create crea una nueva empresa. Si trae entorno AFIP, exige certificado y
// llave coherentes y los valida con un loginCms real contra WSAA.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	cuit, err := afip.NormalizarCUIT(in.CUIT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !afip.CondicionesIVA[in.IVACondition] {
		return nil, fmt.Errorf("%w: condición frente al IVA desconocida %q", domain.ErrInvalidInput, in.IVACondition)
	}
	if existing, err := uc.repo.GetByCUIT(cuit); err == nil && existing != nil {
		return nil, domain.ErrDuplicate
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	company := &entity.Company{
		ID:             uuid.New().String(),
		Name:           in.Name,
		CUIT:           cuit,
		IVACondition:   in.IVACondition,
		CertificatePEM: in.CertificatePEM,
		PrivateKeyPEM:  in.PrivateKeyPEM,
		Environment:    in.Environment,
		Address:        in.Address,
		Phone:          in.Phone,
		Email:          in.Email,
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.validarCredenciales(ctx, company); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// validarCredenciales verifica certificado/llave y, si hay entorno declarado,
// hace un loginCms real: la empresa no queda habilitada con credenciales que
// WSAA rechazaría en la primera factura.
func (uc *CompanyUseCase) validarCredenciales(ctx context.Context, company *entity.Company) error {
	if company.Environment == "" {
		return nil
	}
	if company.CertificatePEM == "" || company.PrivateKeyPEM == "" {
		return fmt.Errorf("%w: entorno %q requiere certificado y llave privada", domain.ErrModoAFIPIncorrecto, company.Environment)
	}
	if err := wsaa.VerifyKeyPair(company.CertificatePEM, company.PrivateKeyPEM); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrModoAFIPIncorrecto, err)
	}
	if uc.auth == nil {
		return nil
	}
	creds := wsaa.Credentials{
		CUIT:           company.CUIT,
		CertificatePEM: company.CertificatePEM,
		PrivateKeyPEM:  company.PrivateKeyPEM,
		Environment:    company.Environment,
	}
	if _, err := uc.auth.Authenticate(ctx, entity.ServicioWSFE, creds, true); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrModoAFIPIncorrecto, err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Update actualiza una empresa. Si cambian credenciales o entorno, se vuelve a
// validar contra WSAA.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	revalidar := false
	if in.Name != nil {
		company.Name = *in.Name
	}
	if in.IVACondition != nil {
		if !afip.CondicionesIVA[*in.IVACondition] {
			return nil, fmt.Errorf("%w: condición frente al IVA desconocida %q", domain.ErrInvalidInput, *in.IVACondition)
		}
		company.IVACondition = *in.IVACondition
	}
	if in.CertificatePEM != nil {
		company.CertificatePEM = *in.CertificatePEM
		revalidar = true
	}
	if in.PrivateKeyPEM != nil {
		company.PrivateKeyPEM = *in.PrivateKeyPEM
		revalidar = true
	}
	if in.Environment != nil {
		company.Environment = *in.Environment
		revalidar = true
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	if in.Status != nil {
		company.Status = *in.Status
	}
	if revalidar {
		if err := uc.validarCredenciales(ctx, company); err != nil {
			return nil, err
		}
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:             c.ID,
		Name:           c.Name,
		CUIT:           c.CUIT,
		IVACondition:   c.IVACondition,
		HasCredentials: c.CertificatePEM != "" && c.PrivateKeyPEM != "",
		Environment:    c.Environment,
		Address:        c.Address,
		Phone:          c.Phone,
		Email:          c.Email,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
