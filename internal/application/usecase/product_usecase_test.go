package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/application/usecase"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/infrastructure/memory"
)

func newProductUC() *usecase.ProductUseCase {
	store := memory.NewStore()
	return usecase.NewProductUseCase(store.Products(), billing.NewIntegrityGuard(store.Invoices()))
}

func TestProductCreate_NormalizaSKUyHSNPorDefecto(t *testing.T) {
	uc := newProductUC()

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Name:  "Polo piqué",
		SKU:   "  polo-blk-01 ",
		Price: decimal.RequireFromString("499.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, "POLO-BLK-01", out.SKU)
	assert.Equal(t, "6109", out.HSNCode)
	assert.True(t, out.IsActive)
}

func TestProductCreate_SKUDuplicadoSinDistinguirMayusculas(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()
	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "A", SKU: "TS-01"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "B", SKU: "ts-01"})

	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductCreate_SinSKUNoColisiona(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "A"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "B"})
	assert.NoError(t, err)
}

func TestProductCreate_PrecioNegativo(t *testing.T) {
	uc := newProductUC()

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: "A", Price: decimal.NewFromInt(-5)})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
}

func TestProductUpdate_YFiltros(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()
	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Camiseta básica", Category: "tops"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Jogger", Category: "bottoms"})
	require.NoError(t, err)

	price := decimal.RequireFromString("350")
	hsn := ""
	out, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &price, HSNCode: &hsn})
	require.NoError(t, err)
	assert.True(t, out.Price.Equal(price))
	assert.Equal(t, "6109", out.HSNCode, "HSN vacío vuelve al valor por defecto")

	tops, err := uc.List(ctx, "", "tops", nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, tops.Items, 1)
	assert.Equal(t, p.ID, tops.Items[0].ID)

	search, err := uc.List(ctx, "JOG", "", nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, search.Page.Total)
}

func TestProductGetByID_Inexistente(t *testing.T) {
	uc := newProductUC()

	_, err := uc.GetByID(context.Background(), "nada")

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Entity)
}
