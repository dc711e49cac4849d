package service

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

//go:embed themes.yaml
var builtinThemes []byte

// ThemeCatalog is the read-only list of storefront themes a store may select.
type ThemeCatalog struct {
	themes []domain.Theme
	byID   map[string]domain.Theme
}

// NewThemeCatalog parses the catalog embedded in the binary.
func NewThemeCatalog() (*ThemeCatalog, error) {
	return ParseThemeCatalog(builtinThemes)
}

// ParseThemeCatalog builds a non-empty catalog from YAML.
// Each theme needs an id and a name; ids are unique.
func ParseThemeCatalog(data []byte) (*ThemeCatalog, error) {
	var themes []domain.Theme
	if err := yaml.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("service.ParseThemeCatalog: %w", err)
	}
	if len(themes) == 0 {
		return nil, fmt.Errorf("service.ParseThemeCatalog: catalog is empty")
	}

	byID := make(map[string]domain.Theme, len(themes))
	for i, t := range themes {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("service.ParseThemeCatalog: theme %d: id and name are required", i)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("service.ParseThemeCatalog: duplicate theme id %q", t.ID)
		}
		byID[t.ID] = t
	}
	return &ThemeCatalog{themes: themes, byID: byID}, nil
}

// List returns the catalog in file order.
func (c *ThemeCatalog) List() []domain.Theme {
	out := make([]domain.Theme, len(c.themes))
	copy(out, c.themes)
	return out
}

// Get looks a theme up by id.
func (c *ThemeCatalog) Get(id string) (domain.Theme, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Default is the theme new stores start with.
func (c *ThemeCatalog) Default() domain.Theme {
	return c.themes[0]
}
