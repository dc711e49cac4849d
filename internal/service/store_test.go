package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/repo"
	"github.com/GiacomoGonzales/shopifree/internal/service"
)

// mockStoreRepo is a hand-written test double for repo.StoreRepo.
type mockStoreRepo struct {
	create                  func(ctx context.Context, s domain.Store) (domain.Store, error)
	getByID                 func(ctx context.Context, id uuid.UUID) (domain.Store, error)
	listPaged               func(ctx context.Context, p domain.PaginationParams) ([]domain.Store, int64, error)
	updateSettings          func(ctx context.Context, id uuid.UUID, s domain.StoreSettings) (domain.Store, error)
	setTheme                func(ctx context.Context, id uuid.UUID, themeID string) (domain.Store, error)
	setStatus               func(ctx context.Context, id uuid.UUID, status domain.StoreStatus) (domain.Store, error)
	setSubdomainProvisioned func(ctx context.Context, id uuid.UUID, provisioned bool) error
}

func (m *mockStoreRepo) Create(ctx context.Context, s domain.Store) (domain.Store, error) {
	return m.create(ctx, s)
}
func (m *mockStoreRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Store, error) {
	return m.getByID(ctx, id)
}
func (m *mockStoreRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Store, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockStoreRepo) UpdateSettings(ctx context.Context, id uuid.UUID, s domain.StoreSettings) (domain.Store, error) {
	return m.updateSettings(ctx, id, s)
}
func (m *mockStoreRepo) SetTheme(ctx context.Context, id uuid.UUID, themeID string) (domain.Store, error) {
	return m.setTheme(ctx, id, themeID)
}
func (m *mockStoreRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.StoreStatus) (domain.Store, error) {
	return m.setStatus(ctx, id, status)
}
func (m *mockStoreRepo) SetSubdomainProvisioned(ctx context.Context, id uuid.UUID, provisioned bool) error {
	return m.setSubdomainProvisioned(ctx, id, provisioned)
}

var _ repo.StoreRepo = (*mockStoreRepo)(nil)

// provisionerFunc adapts a function to service.Provisioner.
type provisionerFunc func(ctx context.Context, subdomain string) (string, error)

func (f provisionerFunc) Provision(ctx context.Context, subdomain string) (string, error) {
	return f(ctx, subdomain)
}

// ---- helpers ---------------------------------------------------------------

var (
	merchant = domain.User{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a1"), Role: domain.RoleMerchant}
	intruder = domain.User{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000b2"), Role: domain.RoleMerchant}
	admin    = domain.User{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000c3"), Role: domain.RoleAdmin}
)

func newStoreService(t *testing.T, r repo.StoreRepo, p service.Provisioner) (*service.StoreService, *bytes.Buffer) {
	t.Helper()
	themes, err := service.NewThemeCatalog()
	require.NoError(t, err)
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	return service.NewStoreService(r, themes, p, log), &logs
}

// storeRepoFor returns a repo holding one store owned by merchant.
func storeRepoFor(store domain.Store) *mockStoreRepo {
	return &mockStoreRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Store, error) {
			if id != store.ID {
				return domain.Store{}, domain.ErrNotFound
			}
			return store, nil
		},
		updateSettings: func(_ context.Context, _ uuid.UUID, s domain.StoreSettings) (domain.Store, error) {
			out := store
			out.Name, out.Currency, out.Banners = s.Name, s.Currency, s.Banners
			return out, nil
		},
		setTheme: func(_ context.Context, _ uuid.UUID, themeID string) (domain.Store, error) {
			out := store
			out.ThemeID = themeID
			return out, nil
		},
	}
}

func ownedStore() domain.Store {
	return domain.Store{ID: uuid.New(), OwnerID: merchant.ID, Name: "Tienda", Subdomain: "tienda"}
}

// ---- ValidateSubdomain -----------------------------------------------------

func TestValidateSubdomain(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"tienda", true},
		{"mi-tienda-2", true},
		{"abc", true},
		{"ab", false},
		{"-tienda", false},
		{"tienda-", false},
		{"Tienda", false},
		{"mi_tienda", false},
		{"mi.tienda", false},
		{"www", false},
		{"admin", false},
		{"dashboard", false},
		{string(bytes.Repeat([]byte("a"), 63)), true},
		{string(bytes.Repeat([]byte("a"), 64)), false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			err := service.ValidateSubdomain(tc.in)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrValidation)
			}
		})
	}
}

// ---- CreateStore -----------------------------------------------------------

func TestStoreService_CreateStore_Provisioned(t *testing.T) {
	var marked bool
	r := &mockStoreRepo{
		create: func(_ context.Context, s domain.Store) (domain.Store, error) {
			s.ID = uuid.New()
			return s, nil
		},
		setSubdomainProvisioned: func(_ context.Context, _ uuid.UUID, provisioned bool) error {
			marked = provisioned
			return nil
		},
	}
	svc, _ := newStoreService(t, r, provisionerFunc(func(_ context.Context, sub string) (string, error) {
		return sub + ".shopifree.app", nil
	}))

	got, err := svc.CreateStore(context.Background(), merchant, " Mi Tienda ", " Mi-Tienda ")

	require.NoError(t, err)
	assert.Equal(t, "Mi Tienda", got.Name)
	assert.Equal(t, "mi-tienda", got.Subdomain)
	assert.Equal(t, merchant.ID, got.OwnerID)
	assert.Equal(t, "base-default", got.ThemeID)
	assert.True(t, got.SubdomainProvisioned)
	assert.True(t, marked)
}

func TestStoreService_CreateStore_ProvisioningFailureKeepsStore(t *testing.T) {
	created := false
	r := &mockStoreRepo{
		create: func(_ context.Context, s domain.Store) (domain.Store, error) {
			created = true
			s.ID = uuid.New()
			return s, nil
		},
		setSubdomainProvisioned: func(_ context.Context, _ uuid.UUID, _ bool) error {
			t.Fatal("must not mark a failed subdomain as provisioned")
			return nil
		},
	}
	svc, logs := newStoreService(t, r, provisionerFunc(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("provider down")
	}))

	got, err := svc.CreateStore(context.Background(), merchant, "Tienda", "tienda")

	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, got.SubdomainProvisioned)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "subdomain provisioning failed")
}

func TestStoreService_CreateStore_TakenSubdomain(t *testing.T) {
	r := &mockStoreRepo{
		create: func(_ context.Context, _ domain.Store) (domain.Store, error) {
			return domain.Store{}, domain.ErrConflict
		},
	}
	svc, _ := newStoreService(t, r, provisionerFunc(func(_ context.Context, _ string) (string, error) {
		t.Fatal("must not provision a subdomain that was never stored")
		return "", nil
	}))

	_, err := svc.CreateStore(context.Background(), merchant, "Tienda", "tienda")

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStoreService_CreateStore_Validation(t *testing.T) {
	svc, _ := newStoreService(t, &mockStoreRepo{}, nil)

	_, err := svc.CreateStore(context.Background(), merchant, "", "tienda")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateStore(context.Background(), merchant, "Tienda", "api")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- ProvisionSubdomain ----------------------------------------------------

func TestStoreService_ProvisionSubdomain_PropagatesProviderError(t *testing.T) {
	providerErr := errors.New("domain already in use")
	svc, _ := newStoreService(t, &mockStoreRepo{}, provisionerFunc(func(_ context.Context, _ string) (string, error) {
		return "", providerErr
	}))

	_, err := svc.ProvisionSubdomain(context.Background(), "tienda")

	assert.ErrorIs(t, err, providerErr)
}

// ---- Authorize -------------------------------------------------------------

func TestStoreService_Authorize(t *testing.T) {
	store := ownedStore()
	svc, _ := newStoreService(t, storeRepoFor(store), nil)
	ctx := context.Background()

	_, err := svc.Authorize(ctx, merchant, store.ID)
	assert.NoError(t, err, "owner")

	_, err = svc.Authorize(ctx, admin, store.ID)
	assert.NoError(t, err, "admin")

	_, err = svc.Authorize(ctx, intruder, store.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Authorize(ctx, merchant, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- UpdateSettings --------------------------------------------------------

func TestStoreService_UpdateSettings_Valid(t *testing.T) {
	store := ownedStore()
	svc, _ := newStoreService(t, storeRepoFor(store), nil)

	got, err := svc.UpdateSettings(context.Background(), merchant, store.ID, domain.StoreSettings{
		Name:     "Nueva",
		Currency: "pen",
		Banners:  []domain.Banner{{ImageURL: "https://cdn.example.com/b.png", Title: "Hola"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "PEN", got.Currency)
	assert.Len(t, got.Banners, 1)
}

func TestStoreService_UpdateSettings_Invalid(t *testing.T) {
	store := ownedStore()
	svc, _ := newStoreService(t, storeRepoFor(store), nil)

	tooMany := make([]domain.Banner, domain.MaxBanners+1)
	for i := range tooMany {
		tooMany[i] = domain.Banner{ImageURL: "https://cdn.example.com/b.png"}
	}

	for name, st := range map[string]domain.StoreSettings{
		"missing name":     {Currency: "USD"},
		"bad currency":     {Name: "T", Currency: "SOLES"},
		"bad logo":         {Name: "T", Currency: "USD", LogoURL: "not a url"},
		"too many banners": {Name: "T", Currency: "USD", Banners: tooMany},
		"banner no image":  {Name: "T", Currency: "USD", Banners: []domain.Banner{{Title: "x"}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpdateSettings(context.Background(), merchant, store.ID, st)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestStoreService_UpdateSettings_NotOwner(t *testing.T) {
	store := ownedStore()
	svc, _ := newStoreService(t, storeRepoFor(store), nil)

	_, err := svc.UpdateSettings(context.Background(), intruder, store.ID, domain.StoreSettings{Name: "T", Currency: "USD"})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ---- SelectTheme -----------------------------------------------------------

func TestStoreService_SelectTheme(t *testing.T) {
	store := ownedStore()
	svc, _ := newStoreService(t, storeRepoFor(store), nil)

	got, err := svc.SelectTheme(context.Background(), merchant, store.ID, "noche")
	require.NoError(t, err)
	assert.Equal(t, "noche", got.ThemeID)

	_, err = svc.SelectTheme(context.Background(), merchant, store.ID, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- SetStatus -------------------------------------------------------------

func TestStoreService_SetStatus(t *testing.T) {
	r := &mockStoreRepo{
		setStatus: func(_ context.Context, id uuid.UUID, status domain.StoreStatus) (domain.Store, error) {
			return domain.Store{ID: id, Status: status}, nil
		},
	}
	svc, _ := newStoreService(t, r, nil)

	got, err := svc.SetStatus(context.Background(), uuid.New(), domain.StoreSuspended)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreSuspended, got.Status)

	_, err = svc.SetStatus(context.Background(), uuid.New(), "deleted")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
