package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/handler"
)

// ---- mock servicers --------------------------------------------------------

// mockCustomerServicer is a test double for handler.CustomerServicer.
// Set only the method fields your test needs.
type mockCustomerServicer struct {
	list       func(ctx context.Context, storeID uuid.UUID, f domain.CustomerFilters, page, perPage int) (domain.CustomerPage, error)
	export     func(ctx context.Context, storeID uuid.UUID, f domain.CustomerFilters) ([]domain.Customer, error)
	getByID    func(ctx context.Context, storeID, id uuid.UUID) (domain.Customer, error)
	create     func(ctx context.Context, c domain.Customer) (domain.Customer, error)
	update     func(ctx context.Context, storeID, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error)
	delete     func(ctx context.Context, storeID, id uuid.UUID) error
	bulkUpdate func(ctx context.Context, storeID uuid.UUID, updates []domain.CustomerUpdate) error
	listTags   func(ctx context.Context, storeID uuid.UUID, prefix string) ([]domain.TagCount, error)
}

func (m *mockCustomerServicer) List(ctx context.Context, storeID uuid.UUID, f domain.CustomerFilters, page, perPage int) (domain.CustomerPage, error) {
	return m.list(ctx, storeID, f, page, perPage)
}
func (m *mockCustomerServicer) Export(ctx context.Context, storeID uuid.UUID, f domain.CustomerFilters) ([]domain.Customer, error) {
	return m.export(ctx, storeID, f)
}
func (m *mockCustomerServicer) GetByID(ctx context.Context, storeID, id uuid.UUID) (domain.Customer, error) {
	return m.getByID(ctx, storeID, id)
}
func (m *mockCustomerServicer) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	return m.create(ctx, c)
}
func (m *mockCustomerServicer) Update(ctx context.Context, storeID, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error) {
	return m.update(ctx, storeID, id, patch)
}
func (m *mockCustomerServicer) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return m.delete(ctx, storeID, id)
}
func (m *mockCustomerServicer) BulkUpdate(ctx context.Context, storeID uuid.UUID, updates []domain.CustomerUpdate) error {
	return m.bulkUpdate(ctx, storeID, updates)
}

func (m *mockCustomerServicer) ListTags(ctx context.Context, storeID uuid.UUID, prefix string) ([]domain.TagCount, error) {
	return m.listTags(ctx, storeID, prefix)
}

var _ handler.CustomerServicer = (*mockCustomerServicer)(nil)

// mockStoreServicer is a test double for handler.StoreServicer.
// authorize defaults to "caller owns every store" so customer and product
// tests only set it when they test ownership.
type mockStoreServicer struct {
	createStore        func(ctx context.Context, owner domain.User, name, subdomain string) (domain.Store, error)
	provisionSubdomain func(ctx context.Context, subdomain string) (string, error)
	authorize          func(ctx context.Context, actor domain.User, storeID uuid.UUID) (domain.Store, error)
	listStores         func(ctx context.Context, p domain.PaginationParams) ([]domain.Store, int64, error)
	updateSettings     func(ctx context.Context, actor domain.User, storeID uuid.UUID, s domain.StoreSettings) (domain.Store, error)
	selectTheme        func(ctx context.Context, actor domain.User, storeID uuid.UUID, themeID string) (domain.Store, error)
	listThemes         func() []domain.Theme
	setStatus          func(ctx context.Context, storeID uuid.UUID, status domain.StoreStatus) (domain.Store, error)
}

func (m *mockStoreServicer) CreateStore(ctx context.Context, owner domain.User, name, subdomain string) (domain.Store, error) {
	return m.createStore(ctx, owner, name, subdomain)
}
func (m *mockStoreServicer) ProvisionSubdomain(ctx context.Context, subdomain string) (string, error) {
	return m.provisionSubdomain(ctx, subdomain)
}
func (m *mockStoreServicer) Authorize(ctx context.Context, actor domain.User, storeID uuid.UUID) (domain.Store, error) {
	if m.authorize == nil {
		return domain.Store{ID: storeID, OwnerID: actor.ID, Subdomain: "mi-tienda", Status: domain.StoreActive}, nil
	}
	return m.authorize(ctx, actor, storeID)
}
func (m *mockStoreServicer) ListStores(ctx context.Context, p domain.PaginationParams) ([]domain.Store, int64, error) {
	return m.listStores(ctx, p)
}
func (m *mockStoreServicer) UpdateSettings(ctx context.Context, actor domain.User, storeID uuid.UUID, s domain.StoreSettings) (domain.Store, error) {
	return m.updateSettings(ctx, actor, storeID, s)
}
func (m *mockStoreServicer) SelectTheme(ctx context.Context, actor domain.User, storeID uuid.UUID, themeID string) (domain.Store, error) {
	return m.selectTheme(ctx, actor, storeID, themeID)
}
func (m *mockStoreServicer) ListThemes() []domain.Theme {
	return m.listThemes()
}
func (m *mockStoreServicer) SetStatus(ctx context.Context, storeID uuid.UUID, status domain.StoreStatus) (domain.Store, error) {
	return m.setStatus(ctx, storeID, status)
}

var _ handler.StoreServicer = (*mockStoreServicer)(nil)

// mockProductServicer is a test double for handler.ProductServicer.
type mockProductServicer struct {
	create         func(ctx context.Context, p domain.Product) (domain.Product, error)
	listPaged      func(ctx context.Context, storeID uuid.UUID, p domain.PaginationParams) ([]domain.Product, int64, error)
	delete         func(ctx context.Context, storeID, id uuid.UUID) error
	importProducts func(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader) (domain.ImportResult, error)
}

func (m *mockProductServicer) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	return m.create(ctx, p)
}
func (m *mockProductServicer) ListPaged(ctx context.Context, storeID uuid.UUID, p domain.PaginationParams) ([]domain.Product, int64, error) {
	return m.listPaged(ctx, storeID, p)
}
func (m *mockProductServicer) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return m.delete(ctx, storeID, id)
}
func (m *mockProductServicer) ImportProducts(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader) (domain.ImportResult, error) {
	return m.importProducts(ctx, storeID, filename, r)
}

var _ handler.ProductServicer = (*mockProductServicer)(nil)

// mockAuthServicer is a test double for handler.AuthServicer.
// Resolve looks tokens up in sessions; anything else is unauthorized.
type mockAuthServicer struct {
	sessions  map[string]domain.Session
	loggedOut []string

	register  func(ctx context.Context, email, displayName, password string) (domain.User, error)
	login     func(ctx context.Context, email, password string) (domain.Session, error)
	listUsers func(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error)
	setRole   func(ctx context.Context, id uuid.UUID, role domain.Role) (domain.User, error)
}

func (m *mockAuthServicer) Resolve(_ context.Context, token string) (domain.Session, error) {
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}
	return domain.Session{}, domain.ErrUnauthorized
}
func (m *mockAuthServicer) Logout(_ context.Context, token string) error {
	m.loggedOut = append(m.loggedOut, token)
	delete(m.sessions, token)
	return nil
}
func (m *mockAuthServicer) Register(ctx context.Context, email, displayName, password string) (domain.User, error) {
	return m.register(ctx, email, displayName, password)
}
func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (domain.Session, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthServicer) ListUsers(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error) {
	return m.listUsers(ctx, p)
}
func (m *mockAuthServicer) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.User, error) {
	return m.setRole(ctx, id, role)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

// ---- helpers ---------------------------------------------------------------

const (
	merchantToken = "merchant-token"
	adminToken    = "admin-token"
)

var (
	merchant = domain.User{ID: uuid.New(), Email: "ana@example.com", DisplayName: "Ana", Role: domain.RoleMerchant}
	admin    = domain.User{ID: uuid.New(), Email: "root@example.com", DisplayName: "Root", Role: domain.RoleAdmin}
	storeID  = uuid.New()
)

// testAPI holds the mocks behind one router. Nil servicers are replaced by
// empty mocks so tests only fill in what they exercise.
type testAPI struct {
	customers *mockCustomerServicer
	stores    *mockStoreServicer
	products  *mockProductServicer
	auth      *mockAuthServicer
	logs      *bytes.Buffer
}

// newTestAPI returns a testAPI with a merchant and an admin already signed in.
func newTestAPI() *testAPI {
	return &testAPI{
		customers: &mockCustomerServicer{},
		stores:    &mockStoreServicer{},
		products:  &mockProductServicer{},
		auth: &mockAuthServicer{sessions: map[string]domain.Session{
			merchantToken: {Token: merchantToken, User: merchant},
			adminToken:    {Token: adminToken, User: admin},
		}},
		logs: &bytes.Buffer{},
	}
}

// handler wires the mocks into Server.Routes, the same router main.go mounts.
func (a *testAPI) handler() http.Handler {
	log := slog.New(slog.NewJSONHandler(a.logs, nil))
	srv := handler.NewServer(handler.Services{
		Customers: a.customers,
		Stores:    a.stores,
		Products:  a.products,
		Auth:      a.auth,
	}, log)
	return srv.Routes()
}

// do sends a request signed with token (empty for anonymous) and records the response.
func (a *testAPI) do(t *testing.T, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// errorCode decodes the error envelope and returns its code and message.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	body := decode[handler.ErrorResponse](t, rec)
	return body.Error.Code, body.Error.Message
}

func storePath(suffix string) string {
	return "/stores/" + storeID.String() + suffix
}

func stringsReader(s string) io.Reader {
	if s == "" {
		return http.NoBody
	}
	return strings.NewReader(s)
}
