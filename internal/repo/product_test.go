package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/repo"
)

func TestProductRepo_Create_ListPaged(t *testing.T) {
	tx := newTestTx(t)
	store := mustCreateStore(t, tx, "bodega")
	r := repo.NewProductRepo(tx)
	ctx := context.Background()

	for _, name := range []string{"Arroz", "Azúcar", "Café"} {
		_, err := r.Create(ctx, domain.Product{StoreID: store.ID, Name: name, Price: 12.5})
		require.NoError(t, err)
	}

	page, total, err := r.ListPaged(ctx, store.ID, domain.PaginationParams{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.InDelta(t, 12.5, page[0].Price, 0.001)
}

func TestProductRepo_Delete(t *testing.T) {
	tx := newTestTx(t)
	store := mustCreateStore(t, tx, "bodega")
	r := repo.NewProductRepo(tx)
	ctx := context.Background()

	p, err := r.Create(ctx, domain.Product{StoreID: store.ID, Name: "Arroz", Price: 3})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, store.ID, p.ID))
	assert.ErrorIs(t, r.Delete(ctx, store.ID, p.ID), domain.ErrNotFound)
}

func TestProductRepo_Delete_NotFound(t *testing.T) {
	tx := newTestTx(t)
	store := mustCreateStore(t, tx, "bodega")

	err := repo.NewProductRepo(tx).Delete(context.Background(), store.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
