package repo_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/repo"
	"github.com/GiacomoGonzales/shopifree/testutil"
)

// newTestTx opens a rolled-back transaction; TestMain has applied the migrations.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}

// mustCreateUser inserts a merchant with the given email.
func mustCreateUser(t *testing.T, tx pgx.Tx, email string) domain.User {
	t.Helper()
	u, err := repo.NewUserRepo(tx).Create(context.Background(), domain.User{
		Email:        email,
		DisplayName:  "Test Merchant",
		Role:         domain.RoleMerchant,
		PasswordHash: []byte("not-a-real-hash"),
	})
	require.NoError(t, err, "create user")
	return u
}

// mustCreateStore inserts a store owned by a fresh merchant.
func mustCreateStore(t *testing.T, tx pgx.Tx, subdomain string) domain.Store {
	t.Helper()
	owner := mustCreateUser(t, tx, subdomain+"@example.com")
	s, err := repo.NewStoreRepo(tx).Create(context.Background(), domain.Store{
		OwnerID:   owner.ID,
		Name:      "Tienda " + subdomain,
		Subdomain: subdomain,
		Currency:  "PEN",
	})
	require.NoError(t, err, "create store")
	return s
}
