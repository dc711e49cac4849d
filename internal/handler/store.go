package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// Store is the JSON representation of a domain.Store.
type Store struct {
	ID                   uuid.UUID `json:"id"`
	OwnerID              uuid.UUID `json:"ownerId"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Subdomain            string    `json:"subdomain"`
	SubdomainProvisioned bool      `json:"subdomainProvisioned"`
	ThemeID              string    `json:"themeId"`
	Currency             string    `json:"currency"`
	LogoURL              string    `json:"logoUrl"`
	Banners              []Banner  `json:"banners"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// Banner mirrors domain.Banner.
type Banner struct {
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Theme is one entry of GET /themes.
type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PreviewURL  string `json:"previewUrl"`
}

// CreateStoreRequest is the body of POST /stores.
type CreateStoreRequest struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

// StoreSettingsRequest is the body of PUT /stores/{storeId}/settings.
type StoreSettingsRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Currency    string   `json:"currency"`
	LogoURL     string   `json:"logoUrl"`
	Banners     []Banner `json:"banners"`
}

// SelectThemeRequest is the body of PUT /stores/{storeId}/theme.
type SelectThemeRequest struct {
	ThemeID string `json:"themeId"`
}

// ProvisionRequest is the body of POST /subdomains.
type ProvisionRequest struct {
	Subdomain string `json:"subdomain"`
}

// ProvisionResponse names the domain the hosting provider created.
type ProvisionResponse struct {
	Domain string `json:"domain"`
}

// CreateStore handles POST /stores. The store is created for the signed-in user.
// A 201 with subdomainProvisioned=false means the store exists but the
// hosting provider did not accept the subdomain.
func (s *Server) CreateStore(w http.ResponseWriter, r *http.Request) {
	var body CreateStoreRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.stores.CreateStore(r.Context(), actor(r), body.Name, body.Subdomain)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, storeToResponse(created))
}

// GetStore handles GET /stores/{storeId}.
func (s *Server) GetStore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, storeToResponse(storeFrom(r.Context())))
}

// UpdateStoreSettings handles PUT /stores/{storeId}/settings.
func (s *Server) UpdateStoreSettings(w http.ResponseWriter, r *http.Request) {
	var body StoreSettingsRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	banners := make([]domain.Banner, len(body.Banners))
	for i, b := range body.Banners {
		banners[i] = domain.Banner(b)
	}
	settings := domain.StoreSettings{
		Name:        body.Name,
		Description: body.Description,
		Currency:    body.Currency,
		LogoURL:     body.LogoURL,
		Banners:     banners,
	}

	updated, err := s.stores.UpdateSettings(r.Context(), actor(r), storeFrom(r.Context()).ID, settings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storeToResponse(updated))
}

// SelectTheme handles PUT /stores/{storeId}/theme.
func (s *Server) SelectTheme(w http.ResponseWriter, r *http.Request) {
	var body SelectThemeRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.stores.SelectTheme(r.Context(), actor(r), storeFrom(r.Context()).ID, body.ThemeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storeToResponse(updated))
}

// ListThemes handles GET /themes.
func (s *Server) ListThemes(w http.ResponseWriter, _ *http.Request) {
	themes := s.stores.ListThemes()
	out := make([]Theme, len(themes))
	for i, t := range themes {
		out[i] = Theme{ID: t.ID, Name: t.Name, Description: t.Description, PreviewURL: t.PreviewURL}
	}
	writeJSON(w, http.StatusOK, out)
}

// ProvisionSubdomain handles POST /subdomains.
// Hosting provider errors come back as 502 with the provider's message.
func (s *Server) ProvisionSubdomain(w http.ResponseWriter, r *http.Request) {
	var body ProvisionRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	fqdn, err := s.stores.ProvisionSubdomain(r.Context(), body.Subdomain)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProvisionResponse{Domain: fqdn})
}

// storeToResponse converts a domain.Store to its JSON shape.
func storeToResponse(st domain.Store) Store {
	banners := make([]Banner, len(st.Banners))
	for i, b := range st.Banners {
		banners[i] = Banner(b)
	}
	return Store{
		ID:                   st.ID,
		OwnerID:              st.OwnerID,
		Name:                 st.Name,
		Description:          st.Description,
		Subdomain:            st.Subdomain,
		SubdomainProvisioned: st.SubdomainProvisioned,
		ThemeID:              st.ThemeID,
		Currency:             st.Currency,
		LogoURL:              st.LogoURL,
		Banners:              banners,
		Status:               string(st.Status),
		CreatedAt:            st.CreatedAt,
		UpdatedAt:            st.UpdatedAt,
	}
}
