package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// decodeJSON reads a single JSON object into dst. Unknown fields are
// rejected so typos (or attempts to write read-only fields) fail loudly.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", domain.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must be a single JSON object", domain.ErrValidation)
	}
	return nil
}

// pathUUID binds a UUID path parameter the way generated routers do.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false})
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return id, nil
}

// queryParam binds an optional form-style query parameter into dest.
// dest stays nil when the parameter is absent.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// pagination reads ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func pagination(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	if err := queryParam(r, "page", &page); err != nil {
		return domain.PaginationParams{}, err
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}

// Pagination is the page metadata of every list response.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	Total           int  `json:"total"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

func paginationFrom(info domain.PageInfo, limit int) Pagination {
	return Pagination{
		Page:            info.CurrentPage,
		Limit:           limit,
		Total:           info.TotalItems,
		TotalPages:      info.TotalPages,
		HasNextPage:     info.HasNextPage,
		HasPreviousPage: info.HasPreviousPage,
	}
}

// ListResponse wraps one page of items.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// pageOf converts a repo page into a ListResponse.
func pageOf[D, T any](items []D, total int64, p domain.PaginationParams, conv func(D) T) ListResponse[T] {
	data := make([]T, len(items))
	for i, it := range items {
		data[i] = conv(it)
	}
	return ListResponse[T]{
		Data:       data,
		Pagination: paginationFrom(domain.NewPageInfo(int(total), p.Page, p.Limit), p.Limit),
	}
}
