package repository

import "github.com/jhoicas/facturacion-afip/internal/domain/entity"

// PartyRepository define el puerto de persistencia para terceros/clientes.
type PartyRepository interface {
	Create(party *entity.Party) error
	GetByID(id string) (*entity.Party, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Party, error)
	Update(party *entity.Party) error
}
