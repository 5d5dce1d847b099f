package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

const fechaISO = "2006-01-02"

// InvoiceUseCase casos de uso de facturas: contabilización atómica de la
// cabecera con sus líneas, consulta y log de transacciones AFIP. La
// autorización en sí vive en el motor (facturacion.UseCase).
type InvoiceUseCase struct {
	invoices     repository.InvoiceRepository
	transactions repository.AFIPTransactionRepository
	parties      repository.PartyRepository
	pos          repository.PointOfSaleRepository
	currencies   repository.CurrencyRepository
	txRunner     InvoiceTxRunner
}

func NewInvoiceUseCase(
	invoices repository.InvoiceRepository,
	transactions repository.AFIPTransactionRepository,
	parties repository.PartyRepository,
	pos repository.PointOfSaleRepository,
	currencies repository.CurrencyRepository,
	txRunner InvoiceTxRunner,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoices:     invoices,
		transactions: transactions,
		parties:      parties,
		pos:          pos,
		currencies:   currencies,
		txRunner:     txRunner,
	}
}

// Create contabiliza una factura en estado UNSENT. Cabecera, líneas y líneas
// de impuesto se insertan en una única transacción.
func (uc *InvoiceUseCase) Create(ctx context.Context, companyID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	party, err := uc.parties.GetByID(in.PartyID)
	if err != nil {
		return nil, err
	}
	if party.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	pos, err := uc.pos.GetByID(in.PosID)
	if err != nil {
		return nil, err
	}
	if pos.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	currency, err := uc.currencies.GetByISO(in.CurrencyISO)
	if err != nil {
		return nil, err
	}

	invoiceDate, err := time.Parse(fechaISO, in.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha de factura inválida %q", domain.ErrInvalidInput, in.InvoiceDate)
	}
	serviceFrom, err := fechaOpcional(in.ServiceFrom)
	if err != nil {
		return nil, err
	}
	serviceTo, err := fechaOpcional(in.ServiceTo)
	if err != nil {
		return nil, err
	}
	paymentDue, err := fechaOpcional(in.PaymentDue)
	if err != nil {
		return nil, err
	}
	if in.Concept == entity.ConceptoServicios || in.Concept == entity.ConceptoProductosServicios {
		if serviceFrom == nil || serviceTo == nil {
			return nil, domain.ErrFechasServicioFaltantes
		}
	}
	if in.Incoterms != "" && !afip.IncotermValido(in.Incoterms) {
		return nil, fmt.Errorf("%w: incoterm desconocido %q", domain.ErrInvalidInput, in.Incoterms)
	}

	rate := currency.Rate
	if in.CurrencyRate != "" {
		rate, err = decimal.NewFromString(in.CurrencyRate)
		if err != nil || rate.Sign() <= 0 {
			return nil, fmt.Errorf("%w: tasa de cambio inválida %q", domain.ErrInvalidInput, in.CurrencyRate)
		}
	}
	untaxed, err := montoRequerido("untaxed_amount", in.UntaxedAmount)
	if err != nil {
		return nil, err
	}
	tax, err := montoRequerido("tax_amount", in.TaxAmount)
	if err != nil {
		return nil, err
	}
	total, err := montoRequerido("total_amount", in.TotalAmount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		PartyID:       in.PartyID,
		PosID:         in.PosID,
		Direction:     in.Direction,
		Concept:       in.Concept,
		InvoiceDate:   invoiceDate,
		ServiceFrom:   serviceFrom,
		ServiceTo:     serviceTo,
		PaymentDue:    paymentDue,
		CurrencyISO:   in.CurrencyISO,
		CurrencyRate:  rate,
		UntaxedAmount: untaxed,
		TaxAmount:     tax,
		TotalAmount:   total,
		Incoterms:     in.Incoterms,
		Comment:       in.Comment,
		AFIPStatus:    entity.AFIPStatusUnsent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	lines := make([]*entity.InvoiceLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		qty, err := montoRequerido("quantity", l.Quantity)
		if err != nil {
			return nil, err
		}
		unit, err := montoRequerido("unit_price", l.UnitPrice)
		if err != nil {
			return nil, err
		}
		amount, err := montoRequerido("amount", l.Amount)
		if err != nil {
			return nil, err
		}
		lines = append(lines, &entity.InvoiceLine{
			ID:          uuid.New().String(),
			InvoiceID:   invoice.ID,
			ProductCode: l.ProductCode,
			Description: l.Description,
			Quantity:    qty,
			UnitPrice:   unit,
			Amount:      amount,
		})
	}
	taxLines := make([]*entity.InvoiceTaxLine, 0, len(in.TaxLines))
	for _, l := range in.TaxLines {
		rate, err := montoRequerido("rate", l.Rate)
		if err != nil {
			return nil, err
		}
		base, err := montoRequerido("base", l.Base)
		if err != nil {
			return nil, err
		}
		amount, err := montoRequerido("amount", l.Amount)
		if err != nil {
			return nil, err
		}
		taxLines = append(taxLines, &entity.InvoiceTaxLine{
			ID:        uuid.New().String(),
			InvoiceID: invoice.ID,
			TaxGroup:  l.TaxGroup,
			TaxName:   l.TaxName,
			Rate:      rate,
			Base:      base,
			Amount:    amount,
		})
	}

	err = uc.txRunner.Run(ctx, func(invoices repository.InvoiceRepository) error {
		if err := invoices.Create(invoice); err != nil {
			return err
		}
		for _, l := range lines {
			if err := invoices.CreateLine(l); err != nil {
				return err
			}
		}
		for _, l := range taxLines {
			if err := invoices.CreateTaxLine(l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.armarRespuesta(invoice, lines, taxLines), nil
}

// GetByID obtiene una factura con sus líneas, verificando la empresa.
func (uc *InvoiceUseCase) GetByID(companyID, id string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.invoices.GetByID(id)
	if err != nil {
		return nil, err
	}
	if invoice.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoices.GetLines(id)
	if err != nil {
		return nil, err
	}
	taxLines, err := uc.invoices.GetTaxLines(id)
	if err != nil {
		return nil, err
	}
	return uc.armarRespuesta(invoice, lines, taxLines), nil
}

// ListByCompany devuelve las facturas de la empresa, sin líneas.
func (uc *InvoiceUseCase) ListByCompany(companyID string, limit, offset int) (*dto.InvoiceListResponse, error) {
	list, err := uc.invoices.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, i := range list {
		items = append(items, *uc.armarRespuesta(i, nil, nil))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListTransactions devuelve el log de intentos AFIP de una factura.
func (uc *InvoiceUseCase) ListTransactions(companyID, invoiceID string) (*dto.AFIPTransactionListResponse, error) {
	invoice, err := uc.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.transactions.ListByInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AFIPTransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.AFIPTransactionResponse{
			ID:          t.ID,
			InvoiceID:   t.InvoiceID,
			Result:      t.Result,
			Message:     t.Message,
			XMLRequest:  t.XMLRequest,
			XMLResponse: t.XMLResponse,
			CreatedAt:   t.CreatedAt,
		})
	}
	return &dto.AFIPTransactionListResponse{Items: items}, nil
}

func (uc *InvoiceUseCase) armarRespuesta(i *entity.Invoice, lines []*entity.InvoiceLine, taxLines []*entity.InvoiceTaxLine) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:              i.ID,
		CompanyID:       i.CompanyID,
		PartyID:         i.PartyID,
		PosID:           i.PosID,
		Direction:       i.Direction,
		VoucherTypeCode: i.VoucherTypeCode,
		VoucherNumber:   i.VoucherNumber,
		NumberPretty:    i.NumberPretty,
		Concept:         i.Concept,
		InvoiceDate:     i.InvoiceDate.Format(fechaISO),
		CurrencyISO:     i.CurrencyISO,
		CurrencyRate:    i.CurrencyRate.String(),
		UntaxedAmount:   i.UntaxedAmount.StringFixed(2),
		TaxAmount:       i.TaxAmount.StringFixed(2),
		TotalAmount:     i.TotalAmount.StringFixed(2),
		Incoterms:       i.Incoterms,
		Comment:         i.Comment,
		AFIPStatus:      i.AFIPStatus,
		CAE:             i.CAE,
		Barcode:         i.Barcode,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
	if i.ServiceFrom != nil {
		resp.ServiceFrom = i.ServiceFrom.Format(fechaISO)
	}
	if i.ServiceTo != nil {
		resp.ServiceTo = i.ServiceTo.Format(fechaISO)
	}
	if i.PaymentDue != nil {
		resp.PaymentDue = i.PaymentDue.Format(fechaISO)
	}
	if i.CAEDueDate != nil {
		resp.CAEDueDate = i.CAEDueDate.Format(fechaISO)
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ID:          l.ID,
			ProductCode: l.ProductCode,
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Amount:      l.Amount.StringFixed(2),
		})
	}
	for _, l := range taxLines {
		resp.TaxLines = append(resp.TaxLines, dto.InvoiceTaxLineResponse{
			ID:       l.ID,
			TaxGroup: l.TaxGroup,
			TaxName:  l.TaxName,
			Rate:     l.Rate.String(),
			Base:     l.Base.StringFixed(2),
			Amount:   l.Amount.StringFixed(2),
		})
	}
	return resp
}

func fechaOpcional(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(fechaISO, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, s)
	}
	return &t, nil
}

func montoRequerido(campo, valor string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(valor)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s inválido %q", domain.ErrInvalidInput, campo, valor)
	}
	return d, nil
}
