package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// Product is the JSON representation of a domain.Product.
type Product struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateProductRequest is the body of POST /stores/{storeId}/products.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ImportResponse summarises a spreadsheet import.
type ImportResponse struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Errors    []ImportRowError `json:"errors"`
}

// ImportRowError names a spreadsheet row that was not imported.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// importFormField is the multipart field carrying the spreadsheet.
const importFormField = "file"

// ListProducts handles GET /stores/{storeId}/products.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	products, total, err := s.products.ListPaged(r.Context(), storeFrom(r.Context()).ID, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(products, total, params, productToResponse))
}

// CreateProduct handles POST /stores/{storeId}/products.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var body CreateProductRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.products.Create(r.Context(), domain.Product{
		StoreID:     storeFrom(r.Context()).ID,
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, productToResponse(created))
}

// DeleteProduct handles DELETE /stores/{storeId}/products/{productId}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.products.Delete(r.Context(), storeFrom(r.Context()).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportProducts handles POST /stores/{storeId}/products/import.
// The spreadsheet arrives as the multipart field "file". Row failures do not
// fail the request; they are listed in the response.
func (s *Server) ImportProducts(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(importFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, err)
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: multipart field %q with an .xlsx file is required", domain.ErrValidation, importFormField))
		return
	}
	defer file.Close()

	result, err := s.products.ImportProducts(r.Context(), storeFrom(r.Context()).ID, header.Filename, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rowErrors := make([]ImportRowError, len(result.Errors))
	for i, e := range result.Errors {
		rowErrors[i] = ImportRowError(e)
	}
	writeJSON(w, http.StatusOK, ImportResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Errors:    rowErrors,
	})
}

// productToResponse converts a domain.Product to its JSON shape.
func productToResponse(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
