package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/application/usecase"
	"github.com/jhoicas/billing-api/internal/infrastructure/memory"
)

const homeState = "Maharashtra"

var fixedNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

// fixture motor completo sobre el store en memoria.
type fixture struct {
	ctx      context.Context
	store    *memory.Store
	engine   *billing.InvoiceUseCase
	clients  *billing.ClientUseCase
	products *usecase.ProductUseCase

	localClient  string // mismo estado que el emisor
	remoteClient string // otro estado
	shirt        string
	hoodie       string
	beanie       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	guard := billing.NewIntegrityGuard(store.Invoices())
	engine := billing.NewInvoiceUseCase(
		store.TxRunner(), store.Invoices(), store.Clients(), store.Products(),
		billing.EngineConfig{HomeState: homeState},
		zerolog.Nop(),
	)
	engine.SetClock(func() time.Time { return fixedNow })

	f := &fixture{
		ctx:      context.Background(),
		store:    store,
		engine:   engine,
		clients:  billing.NewClientUseCase(store.Clients(), guard),
		products: usecase.NewProductUseCase(store.Products(), guard),
	}
	f.localClient = f.mustClient(t, "Acme Textiles", "compras@acme.in", homeState)
	f.remoteClient = f.mustClient(t, "Bengaluru Retail", "ops@blr-retail.in", "Karnataka")
	f.shirt = f.mustProduct(t, "Camiseta", "TS-01", "100")
	f.hoodie = f.mustProduct(t, "Sudadera", "HD-01", "175")
	f.beanie = f.mustProduct(t, "Gorra", "CP-01", "200")
	return f
}

func (f *fixture) mustClient(t *testing.T, name, email, state string) string {
	t.Helper()
	out, err := f.clients.Create(f.ctx, dto.CreateClientRequest{
		Name:    name,
		Email:   email,
		Address: dto.AddressDTO{City: "Ciudad", State: state, Country: "IN"},
	})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) mustProduct(t *testing.T, name, sku, price string) string {
	t.Helper()
	out, err := f.products.Create(f.ctx, dto.CreateProductRequest{
		Name:     name,
		SKU:      sku,
		Category: "ropa",
		Price:    decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return out.ID
}

// scenarioItems 2×100 + 3×175 + 1×200 = 925.
func (f *fixture) scenarioItems() []dto.InvoiceItemRequest {
	return []dto.InvoiceItemRequest{
		{ProductID: f.shirt, Size: "M", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{ProductID: f.hoodie, Size: "L", Quantity: 3, UnitPrice: decimal.NewFromInt(175)},
		{ProductID: f.beanie, Size: "FREE", Quantity: 1, UnitPrice: decimal.NewFromInt(200)},
	}
}

func (f *fixture) createRequest(clientID string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		ClientID:    clientID,
		InvoiceDate: "2026-03-10",
		DueDate:     "2026-04-09",
		Items:       f.scenarioItems(),
	}
}

func (f *fixture) mustInvoice(t *testing.T, clientID string) *dto.InvoiceResponse {
	t.Helper()
	out, err := f.engine.Create(f.ctx, f.createRequest(clientID))
	require.NoError(t, err)
	return out
}

func (f *fixture) mustStatus(t *testing.T, id string, statuses ...string) {
	t.Helper()
	for _, s := range statuses {
		_, err := f.engine.ChangeStatus(f.ctx, id, s)
		require.NoError(t, err, "→ %s", s)
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }
