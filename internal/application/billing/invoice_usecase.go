package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/invoicing"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

// EngineConfig parámetros fiscales del motor de facturas.
type EngineConfig struct {
	HomeState string             // estado del emisor; define in-state vs out-state
	Rates     invoicing.TaxRates // tasa media (CGST = SGST); la completa es el doble
}

// InvoiceUseCase motor del ciclo de vida de la factura: valida, resuelve
// referencias, numera, calcula impuestos, persiste y devuelve la factura materializada.
type InvoiceUseCase struct {
	txRunner    InvoiceTxRunner
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	cfg         EngineConfig
	log         zerolog.Logger
	now         func() time.Time
	onChange    []func()
}

// NewInvoiceUseCase construye el motor.
func NewInvoiceUseCase(
	txRunner InvoiceTxRunner,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	cfg EngineConfig,
	log zerolog.Logger,
) *InvoiceUseCase {
	if cfg.Rates.Half.IsZero() {
		cfg.Rates = invoicing.DefaultTaxRates()
	}
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		cfg:         cfg,
		log:         log.With().Str("component", "invoice_engine").Logger(),
		now:         time.Now,
	}
}

// OnChange registra fn para después de cada escritura confirmada de facturas
// (alta, edición, cambio de estado, borrado y lote). Llamar antes de servir.
func (uc *InvoiceUseCase) OnChange(fn func()) {
	uc.onChange = append(uc.onChange, fn)
}

func (uc *InvoiceUseCase) changed() {
	for _, fn := range uc.onChange {
		fn()
	}
}

// Create valida la entrada, resuelve cliente y productos, asigna el número y
// persiste la factura en draft dentro de una transacción.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	invoiceDate, err := parseDate("invoice_date", in.InvoiceDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	if err := validateDates(invoiceDate, dueDate); err != nil {
		return nil, err
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}
	var jurisdiction entity.TaxJurisdiction
	if in.TaxJurisdiction != "" {
		jurisdiction, err = parseJurisdiction(in.TaxJurisdiction)
		if err != nil {
			return nil, err
		}
	}

	client, err := uc.resolveClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.resolveProducts(ctx, productIDs(items)); err != nil {
		return nil, err
	}
	if jurisdiction == "" {
		jurisdiction = invoicing.DeriveJurisdiction(client.Address.State, uc.cfg.HomeState)
	}

	now := uc.now().UTC()
	inv := &entity.Invoice{
		ID:              uuid.New().String(),
		ClientID:        client.ID,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		Status:          entity.InvoiceStatusDraft,
		Items:           items,
		TaxJurisdiction: jurisdiction,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	invoicing.ApplyTax(inv, uc.cfg.Rates)

	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, seqRepo repository.SequenceRepository) error {
		number, err := NextInvoiceNumber(ctx, seqRepo, now.Year())
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		return invoiceRepo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("client_id", inv.ClientID).
		Str("jurisdiction", string(inv.TaxJurisdiction)).
		Str("total", inv.TotalAmount.String()).
		Msg("factura creada")
	uc.changed()

	return uc.Get(ctx, inv.ID)
}

// Update aplica solo los campos presentes. Una factura pagada no se modifica.
// La jurisdicción se vuelve a derivar solo si cambia el cliente y no se envió;
// los montos se recalculan si cambian las líneas o la jurisdicción.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, uc.invoiceRepo, id)
	if err != nil {
		return nil, err
	}
	if invoicing.IsTerminal(inv.Status) {
		return nil, &domain.ImmutableStateError{ID: inv.ID, Status: string(inv.Status), Action: "actualizar"}
	}

	recompute := false

	clientChanged := in.ClientID != nil && *in.ClientID != inv.ClientID
	var client *entity.Client
	if clientChanged {
		client, err = uc.resolveClient(ctx, *in.ClientID)
		if err != nil {
			return nil, err
		}
		inv.ClientID = client.ID
	}

	if in.InvoiceDate != nil {
		if inv.InvoiceDate, err = parseDate("invoice_date", *in.InvoiceDate); err != nil {
			return nil, err
		}
	}
	if in.DueDate != nil {
		if inv.DueDate, err = parseDate("due_date", *in.DueDate); err != nil {
			return nil, err
		}
	}
	if err := validateDates(inv.InvoiceDate, inv.DueDate); err != nil {
		return nil, err
	}

	if in.Items != nil {
		items, err := buildItems(*in.Items)
		if err != nil {
			return nil, err
		}
		if _, err := uc.resolveProducts(ctx, productIDs(items)); err != nil {
			return nil, err
		}
		inv.Items = items
		recompute = true
	}

	switch {
	case in.TaxJurisdiction != nil:
		j, err := parseJurisdiction(*in.TaxJurisdiction)
		if err != nil {
			return nil, err
		}
		inv.TaxJurisdiction = j
		recompute = true
	case clientChanged:
		inv.TaxJurisdiction = invoicing.DeriveJurisdiction(client.Address.State, uc.cfg.HomeState)
		recompute = true
	}

	if in.Notes != nil {
		inv.Notes = strings.TrimSpace(*in.Notes)
	}
	if recompute {
		invoicing.ApplyTax(inv, uc.cfg.Rates)
	}
	inv.UpdatedAt = uc.now().UTC()

	if err := uc.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Bool("recomputed", recompute).Msg("factura actualizada")
	uc.changed()
	return uc.Get(ctx, inv.ID)
}

// ChangeStatus mueve la factura a status si la máquina de estados lo permite.
// La escritura es un compare-and-set sobre el estado leído; si otra petición
// ganó la carrera se informa la transición desde el estado vigente.
func (uc *InvoiceUseCase) ChangeStatus(ctx context.Context, id, status string) (*dto.InvoiceResponse, error) {
	to, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	if _, err := uc.transition(ctx, id, to); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// transition aplica el cambio de estado y devuelve el estado anterior.
func (uc *InvoiceUseCase) transition(ctx context.Context, id string, to entity.InvoiceStatus) (entity.InvoiceStatus, error) {
	inv, err := uc.load(ctx, uc.invoiceRepo, id)
	if err != nil {
		return "", err
	}
	from := inv.Status
	if err := invoicing.ValidateTransition(from, to); err != nil {
		return "", err
	}
	ok, err := uc.invoiceRepo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return "", err
	}
	if !ok {
		current, err := uc.load(ctx, uc.invoiceRepo, id)
		if err != nil {
			return "", err
		}
		return "", invoicing.TransitionError(current.Status, to)
	}
	uc.log.Info().
		Str("invoice_id", id).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("estado de factura cambiado")
	uc.changed()
	return from, nil
}

// Delete elimina la factura salvo que esté pagada.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	inv, err := uc.load(ctx, uc.invoiceRepo, id)
	if err != nil {
		return err
	}
	if err := CheckInvoiceDeletable(inv); err != nil {
		return err
	}
	if err := uc.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("invoice_id", id).Str("invoice_number", inv.InvoiceNumber).Msg("factura eliminada")
	uc.changed()
	return nil
}

// BulkUpdate aplica el mismo parche a varias facturas en dos fases: primero se
// valida todo el lote (existencia, pagadas, transiciones, fechas) y cualquier
// fallo aborta sin escribir nada; luego se aplica en una sola transacción.
func (uc *InvoiceUseCase) BulkUpdate(ctx context.Context, in dto.BulkUpdateRequest) (*dto.BulkUpdateResponse, error) {
	ids := uniqueIDs(in.IDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "se requiere al menos un id")
	}
	patch := in.Patch
	if patch.Status == nil && patch.DueDate == nil && patch.Notes == nil {
		return nil, domain.NewValidationError("patch", "sin campos para actualizar")
	}

	var (
		to      entity.InvoiceStatus
		dueDate time.Time
		err     error
	)
	if patch.Status != nil {
		if to, err = parseStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	if patch.DueDate != nil {
		if dueDate, err = parseDate("due_date", *patch.DueDate); err != nil {
			return nil, err
		}
	}

	// ── Fase 1: validar el lote completo ─────────────────────────────────────
	found, err := uc.invoiceRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("bulk: cargar facturas: %w", err)
	}
	byID := make(map[string]*entity.Invoice, len(found))
	for _, inv := range found {
		byID[inv.ID] = inv
	}
	for _, id := range ids {
		inv, ok := byID[id]
		if !ok {
			return nil, &domain.NotFoundError{Entity: "invoice", ID: id}
		}
		if invoicing.IsTerminal(inv.Status) {
			return nil, &domain.ImmutableStateError{ID: id, Status: string(inv.Status), Action: "actualizar"}
		}
		if patch.Status != nil {
			if err := invoicing.ValidateTransition(inv.Status, to); err != nil {
				return nil, err
			}
		}
		if patch.DueDate != nil {
			if err := validateDates(inv.InvoiceDate, dueDate); err != nil {
				return nil, err
			}
		}
	}

	// ── Fase 2: aplicar todo o nada ──────────────────────────────────────────
	// Los campos se escriben antes que el estado: una vez paid la fila ya no
	// admite Update.
	now := uc.now().UTC()
	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.SequenceRepository) error {
		for _, id := range ids {
			inv := byID[id]
			if patch.DueDate != nil || patch.Notes != nil {
				if patch.DueDate != nil {
					inv.DueDate = dueDate
				}
				if patch.Notes != nil {
					inv.Notes = strings.TrimSpace(*patch.Notes)
				}
				inv.UpdatedAt = now
				if err := invoiceRepo.Update(ctx, inv); err != nil {
					return err
				}
			}
			if patch.Status == nil {
				continue
			}
			ok, err := invoiceRepo.UpdateStatus(ctx, id, inv.Status, to)
			if err != nil {
				return err
			}
			if !ok {
				current, err := uc.load(ctx, invoiceRepo, id)
				if err != nil {
					return err
				}
				return invoicing.TransitionError(current.Status, to)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int("count", len(ids)).Msg("actualización de facturas en lote")
	uc.changed()
	return &dto.BulkUpdateResponse{Updated: len(ids), IDs: ids}, nil
}

// Get devuelve la factura con cliente y productos expandidos.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, uc.invoiceRepo, id)
	if err != nil {
		return nil, err
	}
	client, err := uc.clientRepo.GetByID(ctx, inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("materializar factura: cliente: %w", err)
	}
	products, err := uc.productRepo.GetByIDs(ctx, inv.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("materializar factura: productos: %w", err)
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return toInvoiceResponse(inv, client, byID), nil
}

// List lista facturas con filtros opcionales de estado y cliente.
func (uc *InvoiceUseCase) List(ctx context.Context, status, clientID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	filter := repository.InvoiceFilter{ClientID: clientID, Limit: page.Limit, Offset: page.Offset}
	if status != "" {
		s, err := parseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = s
	}
	list, total, err := uc.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceSummaryResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, inv := range list {
		out.Items = append(out.Items, dto.InvoiceSummaryResponse{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			ClientID:      inv.ClientID,
			InvoiceDate:   inv.InvoiceDate.Format(dto.DateLayout),
			DueDate:       inv.DueDate.Format(dto.DateLayout),
			Status:        string(inv.Status),
			TotalAmount:   inv.TotalAmount,
		})
	}
	return out, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (uc *InvoiceUseCase) load(ctx context.Context, repo repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("id", "requerido")
	}
	inv, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, &domain.NotFoundError{Entity: "invoice", ID: id}
	}
	return inv, nil
}

func (uc *InvoiceUseCase) resolveClient(ctx context.Context, id string) (*entity.Client, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("client_id", "requerido")
	}
	client, err := uc.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &domain.NotFoundError{Entity: "client", ID: id}
	}
	return client, nil
}

// resolveProducts verifica en una sola consulta que existan todos los productos.
// Si falta alguno la operación completa falla.
func (uc *InvoiceUseCase) resolveProducts(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	found, err := uc.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolver productos: %w", err)
	}
	byID := make(map[string]*entity.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, &domain.NotFoundError{Entity: "product", ID: id}
		}
	}
	return byID, nil
}

func buildItems(in []dto.InvoiceItemRequest) ([]entity.InvoiceItem, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("items", "la factura necesita al menos una línea")
	}
	items := make([]entity.InvoiceItem, 0, len(in))
	for i, it := range in {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.ProductID) == "" {
			return nil, domain.NewValidationError(field+".product_id", "requerido")
		}
		size := entity.ItemSize(strings.ToUpper(strings.TrimSpace(it.Size)))
		if !size.Valid() {
			return nil, domain.NewValidationError(field+".size", fmt.Sprintf("talla %q no admitida", it.Size))
		}
		if it.Quantity < 1 {
			return nil, domain.NewValidationError(field+".quantity", "debe ser al menos 1")
		}
		if it.UnitPrice.IsNegative() {
			return nil, domain.NewValidationError(field+".unit_price", "no puede ser negativo")
		}
		if !it.UnitPrice.Equal(it.UnitPrice.Round(2)) {
			return nil, domain.NewValidationError(field+".unit_price", "máximo 2 decimales")
		}
		items = append(items, entity.InvoiceItem{
			ProductID: it.ProductID,
			Size:      size,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: invoicing.LineTotal(it.Quantity, it.UnitPrice),
		})
	}
	return items, nil
}

func productIDs(items []entity.InvoiceItem) []string {
	inv := entity.Invoice{Items: items}
	return inv.ProductIDs()
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "fecha inválida, se espera AAAA-MM-DD")
	}
	return t, nil
}

func validateDates(invoiceDate, dueDate time.Time) error {
	if !dueDate.After(invoiceDate) {
		return domain.NewValidationError("due_date", "debe ser posterior a invoice_date")
	}
	return nil
}

func parseStatus(s string) (entity.InvoiceStatus, error) {
	st := entity.InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", domain.NewValidationError("status", fmt.Sprintf("estado %q desconocido", s))
	}
	return st, nil
}

func parseJurisdiction(s string) (entity.TaxJurisdiction, error) {
	j := entity.TaxJurisdiction(strings.ToLower(strings.TrimSpace(s)))
	if !j.Valid() {
		return "", domain.NewValidationError("tax_jurisdiction", fmt.Sprintf("jurisdicción %q desconocida", s))
	}
	return j, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toInvoiceResponse(inv *entity.Invoice, client *entity.Client, products map[string]*entity.Product) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Client:          dto.InvoiceClientResponse{ID: inv.ClientID},
		InvoiceDate:     inv.InvoiceDate.Format(dto.DateLayout),
		DueDate:         inv.DueDate.Format(dto.DateLayout),
		Status:          string(inv.Status),
		Items:           make([]dto.InvoiceItemResponse, 0, len(inv.Items)),
		TaxJurisdiction: string(inv.TaxJurisdiction),
		Subtotal:        inv.Subtotal,
		CGST:            inv.CGST,
		SGST:            inv.SGST,
		IGST:            inv.IGST,
		TotalTax:        inv.TotalTax,
		TotalAmount:     inv.TotalAmount,
		Notes:           inv.Notes,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
	if client != nil {
		resp.Client = dto.InvoiceClientResponse{
			ID:      client.ID,
			Name:    client.Name,
			Email:   client.Email,
			Phone:   client.Phone,
			GSTIN:   client.GSTIN,
			PAN:     client.PAN,
			Address: toAddressDTO(client.Address),
		}
	}
	for _, it := range inv.Items {
		line := dto.InvoiceItemResponse{
			ProductID: it.ProductID,
			Size:      string(it.Size),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		}
		if p, ok := products[it.ProductID]; ok {
			line.ProductName = p.Name
			line.SKU = p.SKU
			line.HSNCode = p.HSNCode
			line.Category = p.Category
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
