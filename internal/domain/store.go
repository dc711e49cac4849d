package domain

import (
	"time"

	"github.com/google/uuid"
)

// StoreStatus is the moderation state of a store.
type StoreStatus string

const (
	StoreActive    StoreStatus = "active"
	StoreSuspended StoreStatus = "suspended"
)

// Store is a tenant: one merchant's shop with its own customers and products.
// SubdomainProvisioned is false when the store row exists but the hosting
// provider never confirmed the subdomain.
type Store struct {
	ID                   uuid.UUID
	OwnerID              uuid.UUID
	Name                 string
	Description          string
	Subdomain            string
	SubdomainProvisioned bool
	ThemeID              string
	Currency             string
	LogoURL              string
	Banners              []Banner
	Status               StoreStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// WritableBy reports whether actor may change the store or its data.
// A suspended store is read-only to everyone but admins.
func (s Store) WritableBy(actor User) bool {
	return s.Status != StoreSuspended || actor.IsAdmin()
}

// Banner is a storefront hero image with an optional link and caption.
type Banner struct {
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link,omitempty"`
	Title    string `json:"title,omitempty"`
}

// MaxBanners caps how many banners a store may configure.
const MaxBanners = 10

// StoreSettings is the merchant-editable configuration of a store.
type StoreSettings struct {
	Name        string
	Description string
	Currency    string
	LogoURL     string
	Banners     []Banner
}

// Theme is an entry in the built-in storefront theme catalog.
type Theme struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PreviewURL  string `yaml:"preview_url"`
}
