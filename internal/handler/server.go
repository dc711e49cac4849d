// Package handler implements the HTTP handlers for the Shopifree API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (customer.go, store.go, etc.) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/middleware"
)

// CustomerServicer defines the customer operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type CustomerServicer interface {
	List(ctx context.Context, storeID uuid.UUID, f domain.CustomerFilters, page, perPage int) (domain.CustomerPage, error)
	Export(ctx context.Context, storeID uuid.UUID, f domain.CustomerFilters) ([]domain.Customer, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (domain.Customer, error)
	Update(ctx context.Context, storeID, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	BulkUpdate(ctx context.Context, storeID uuid.UUID, updates []domain.CustomerUpdate) error
	ListTags(ctx context.Context, storeID uuid.UUID, prefix string) ([]domain.TagCount, error)
}

// StoreServicer defines the store, theme and provisioning operations.
type StoreServicer interface {
	CreateStore(ctx context.Context, owner domain.User, name, subdomain string) (domain.Store, error)
	ProvisionSubdomain(ctx context.Context, subdomain string) (string, error)
	Authorize(ctx context.Context, actor domain.User, storeID uuid.UUID) (domain.Store, error)
	ListStores(ctx context.Context, p domain.PaginationParams) ([]domain.Store, int64, error)
	UpdateSettings(ctx context.Context, actor domain.User, storeID uuid.UUID, s domain.StoreSettings) (domain.Store, error)
	SelectTheme(ctx context.Context, actor domain.User, storeID uuid.UUID, themeID string) (domain.Store, error)
	ListThemes() []domain.Theme
	SetStatus(ctx context.Context, storeID uuid.UUID, status domain.StoreStatus) (domain.Store, error)
}

// ProductServicer defines the catalog operations.
type ProductServicer interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	ListPaged(ctx context.Context, storeID uuid.UUID, p domain.PaginationParams) ([]domain.Product, int64, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	ImportProducts(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader) (domain.ImportResult, error)
}

// AuthServicer defines account and session operations. It also satisfies
// middleware.SessionResolver.
type AuthServicer interface {
	middleware.SessionResolver
	Register(ctx context.Context, email, displayName, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.Session, error)
	ListUsers(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error)
	SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.User, error)
}

// Services bundles the dependencies of Server.
type Services struct {
	Customers CustomerServicer
	Stores    StoreServicer
	Products  ProductServicer
	Auth      AuthServicer
}

// Server serves every API endpoint.
type Server struct {
	customers CustomerServicer
	stores    StoreServicer
	products  ProductServicer
	auth      AuthServicer
	log       *slog.Logger
	now       func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	return &Server{
		customers: svc.Customers,
		stores:    svc.Stores,
		products:  svc.Products,
		auth:      svc.Auth,
		log:       log,
		now:       time.Now,
	}
}

// Routes returns the API router. Cross-cutting middleware (request IDs,
// logging, CORS, body limits) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/themes", s.ListThemes)
	r.Post("/users", s.Register)
	r.Post("/sessions", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(s.auth, s.log))

		r.Delete("/sessions/current", s.Logout)
		r.Post("/subdomains", s.ProvisionSubdomain)
		r.Post("/stores", s.CreateStore)

		r.Route("/stores/{storeId}", func(r chi.Router) {
			r.Use(s.storeAccess)

			r.Get("/", s.GetStore)
			r.Put("/settings", s.UpdateStoreSettings)
			r.Put("/theme", s.SelectTheme)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", s.ListCustomers)
				r.Post("/", s.CreateCustomer)
				r.Get("/export", s.ExportCustomers)
				r.Patch("/bulk", s.BulkUpdateCustomers)
				r.Get("/tags", s.ListCustomerTags)
				r.Get("/{customerId}", s.GetCustomer)
				r.Patch("/{customerId}", s.UpdateCustomer)
				r.Delete("/{customerId}", s.DeleteCustomer)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", s.ListProducts)
				r.Post("/", s.CreateProduct)
				r.Post("/import", s.ImportProducts)
				r.Delete("/{productId}", s.DeleteProduct)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(s.auth, s.log))

			r.Get("/stores", s.AdminListStores)
			r.Put("/stores/{storeId}/status", s.AdminSetStoreStatus)
			r.Get("/users", s.AdminListUsers)
			r.Put("/users/{userId}/role", s.AdminSetUserRole)
		})
	})

	return r
}

type storeKey struct{}

// storeAccess resolves {storeId}, checks the session user may manage it and
// stores it in the request context for the handlers below. Writes to a
// suspended store are refused unless the user is an admin.
func (s *Server) storeAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		session, _ := middleware.SessionFrom(r.Context())

		store, err := s.stores.Authorize(r.Context(), session.User, storeID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !isReadOnly(r.Method) && !store.WritableBy(session.User) {
			s.writeError(w, r, fmt.Errorf("%w: store is suspended", domain.ErrForbidden))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), storeKey{}, store)))
	})
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// storeFrom returns the store loaded by storeAccess.
func storeFrom(ctx context.Context) domain.Store {
	store, _ := ctx.Value(storeKey{}).(domain.Store)
	return store
}

// actor returns the signed-in user. Routes behind RequireSession always have one.
func actor(r *http.Request) domain.User {
	session, _ := middleware.SessionFrom(r.Context())
	return session.User
}
