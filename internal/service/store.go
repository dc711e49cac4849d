package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/repo"
)

// Provisioner registers a subdomain with the hosting provider and returns
// the fully qualified domain it created.
type Provisioner interface {
	Provision(ctx context.Context, subdomain string) (string, error)
}

var (
	subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61})[a-z0-9]$`)
	currencyPattern  = regexp.MustCompile(`^[A-Z]{3}$`)
)

var reservedSubdomains = map[string]bool{
	"www":       true,
	"admin":     true,
	"api":       true,
	"app":       true,
	"mail":      true,
	"dashboard": true,
}

// ValidateSubdomain checks a subdomain label: 3-63 characters of [a-z0-9-],
// no leading or trailing hyphen, and not reserved.
func ValidateSubdomain(sub string) error {
	if !subdomainPattern.MatchString(sub) {
		return fmt.Errorf("%w: subdomain must be 3-63 lowercase letters, digits or hyphens and cannot start or end with a hyphen", domain.ErrValidation)
	}
	if reservedSubdomains[sub] {
		return fmt.Errorf("%w: subdomain %q is reserved", domain.ErrValidation, sub)
	}
	return nil
}

// StoreService owns store creation, configuration and moderation.
type StoreService struct {
	stores      repo.StoreRepo
	themes      *ThemeCatalog
	provisioner Provisioner
	log         *slog.Logger
}

// NewStoreService constructs a StoreService.
func NewStoreService(stores repo.StoreRepo, themes *ThemeCatalog, p Provisioner, log *slog.Logger) *StoreService {
	return &StoreService{stores: stores, themes: themes, provisioner: p, log: log}
}

// CreateStore persists a new store for owner and then provisions its
// subdomain. A provisioning failure is logged and leaves the store in place
// with SubdomainProvisioned=false.
func (s *StoreService) CreateStore(ctx context.Context, owner domain.User, name, subdomain string) (domain.Store, error) {
	name = strings.TrimSpace(name)
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if name == "" {
		return domain.Store{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := ValidateSubdomain(subdomain); err != nil {
		return domain.Store{}, err
	}

	created, err := s.stores.Create(ctx, domain.Store{
		OwnerID:   owner.ID,
		Name:      name,
		Subdomain: subdomain,
		ThemeID:   s.themes.Default().ID,
		Currency:  "USD",
	})
	if err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.CreateStore: %w", err)
	}

	if _, err := s.provisioner.Provision(ctx, created.Subdomain); err != nil {
		s.log.WarnContext(ctx, "subdomain provisioning failed",
			"store_id", created.ID,
			"subdomain", created.Subdomain,
			"error", err,
		)
		return created, nil
	}

	if err := s.stores.SetSubdomainProvisioned(ctx, created.ID, true); err != nil {
		s.log.WarnContext(ctx, "could not record provisioned subdomain",
			"store_id", created.ID,
			"error", err,
		)
		return created, nil
	}
	created.SubdomainProvisioned = true
	return created, nil
}

// ProvisionSubdomain registers a subdomain directly with the hosting provider.
// Provider errors are returned wrapped so callers can inspect them.
func (s *StoreService) ProvisionSubdomain(ctx context.Context, subdomain string) (string, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if err := ValidateSubdomain(subdomain); err != nil {
		return "", err
	}

	fqdn, err := s.provisioner.Provision(ctx, subdomain)
	if err != nil {
		return "", fmt.Errorf("service.StoreService.ProvisionSubdomain: %w", err)
	}
	return fqdn, nil
}

// Authorize loads a store and checks that actor may manage it.
// Owners manage their own stores; admins manage any store.
func (s *StoreService) Authorize(ctx context.Context, actor domain.User, storeID uuid.UUID) (domain.Store, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.Authorize: %w", err)
	}
	if !actor.IsAdmin() && store.OwnerID != actor.ID {
		return domain.Store{}, fmt.Errorf("service.StoreService.Authorize: %w", domain.ErrForbidden)
	}
	return store, nil
}

// ListStores returns one page of every store on the platform.
func (s *StoreService) ListStores(ctx context.Context, p domain.PaginationParams) ([]domain.Store, int64, error) {
	stores, total, err := s.stores.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.StoreService.ListStores: %w", err)
	}
	return stores, total, nil
}

// UpdateSettings validates and saves the merchant-editable settings of a store.
func (s *StoreService) UpdateSettings(ctx context.Context, actor domain.User, storeID uuid.UUID, settings domain.StoreSettings) (domain.Store, error) {
	settings.Name = strings.TrimSpace(settings.Name)
	settings.Currency = strings.ToUpper(strings.TrimSpace(settings.Currency))
	if err := validateSettings(settings); err != nil {
		return domain.Store{}, err
	}
	if settings.Banners == nil {
		settings.Banners = []domain.Banner{}
	}

	if _, err := s.Authorize(ctx, actor, storeID); err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.UpdateSettings: %w", err)
	}

	updated, err := s.stores.UpdateSettings(ctx, storeID, settings)
	if err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.UpdateSettings: %w", err)
	}
	return updated, nil
}

// SelectTheme switches a store to a theme from the catalog.
func (s *StoreService) SelectTheme(ctx context.Context, actor domain.User, storeID uuid.UUID, themeID string) (domain.Store, error) {
	if _, ok := s.themes.Get(themeID); !ok {
		return domain.Store{}, fmt.Errorf("%w: unknown theme %q", domain.ErrValidation, themeID)
	}

	if _, err := s.Authorize(ctx, actor, storeID); err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.SelectTheme: %w", err)
	}

	updated, err := s.stores.SetTheme(ctx, storeID, themeID)
	if err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.SelectTheme: %w", err)
	}
	return updated, nil
}

// ListThemes returns the theme catalog.
func (s *StoreService) ListThemes() []domain.Theme {
	return s.themes.List()
}

// SetStatus records a moderation decision on a store.
func (s *StoreService) SetStatus(ctx context.Context, storeID uuid.UUID, status domain.StoreStatus) (domain.Store, error) {
	if status != domain.StoreActive && status != domain.StoreSuspended {
		return domain.Store{}, fmt.Errorf("%w: status must be %q or %q", domain.ErrValidation, domain.StoreActive, domain.StoreSuspended)
	}

	updated, err := s.stores.SetStatus(ctx, storeID, status)
	if err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.SetStatus: %w", err)
	}
	return updated, nil
}

func validateSettings(st domain.StoreSettings) error {
	if st.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !currencyPattern.MatchString(st.Currency) {
		return fmt.Errorf("%w: currency must be a three-letter ISO 4217 code", domain.ErrValidation)
	}
	if st.LogoURL != "" && !isHTTPURL(st.LogoURL) {
		return fmt.Errorf("%w: logo URL must be an http(s) URL", domain.ErrValidation)
	}
	if len(st.Banners) > domain.MaxBanners {
		return fmt.Errorf("%w: at most %d banners", domain.ErrValidation, domain.MaxBanners)
	}
	for i, b := range st.Banners {
		if !isHTTPURL(b.ImageURL) {
			return fmt.Errorf("%w: banner %d needs an http(s) image URL", domain.ErrValidation, i+1)
		}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
