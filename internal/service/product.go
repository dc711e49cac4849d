package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/repo"
)

// Header aliases recognised by the spreadsheet import, in priority order.
var (
	nameHeaders        = []string{"nombre", "name", "producto", "product"}
	priceHeaders       = []string{"precio", "price", "valor", "value"}
	descriptionHeaders = []string{"descripcion", "descripción", "description"}
)

// ProductService manages a store's catalog.
type ProductService struct {
	products repo.ProductRepo
	log      *slog.Logger
}

// NewProductService constructs a ProductService backed by the provided ProductRepo.
func NewProductService(r repo.ProductRepo, log *slog.Logger) *ProductService {
	return &ProductService{products: r, log: log}
}

// Create validates and persists a product.
func (s *ProductService) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if err := validateProduct(p); err != nil {
		return domain.Product{}, err
	}

	created, err := s.products.Create(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("service.ProductService.Create: %w", err)
	}
	return created, nil
}

// ListPaged returns one page of a store's products and the total count.
func (s *ProductService) ListPaged(ctx context.Context, storeID uuid.UUID, p domain.PaginationParams) ([]domain.Product, int64, error) {
	products, total, err := s.products.ListPaged(ctx, storeID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ProductService.ListPaged: %w", err)
	}
	return products, total, nil
}

// Delete removes a product from the store.
func (s *ProductService) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	if err := s.products.Delete(ctx, storeID, id); err != nil {
		return fmt.Errorf("service.ProductService.Delete: %w", err)
	}
	return nil
}

// ImportProducts creates one product per data row of the first sheet of an
// .xlsx workbook. Rows are created one at a time in sheet order. A failing
// row is counted and reported; it does not stop the import.
func (s *ProductService) ImportProducts(ctx context.Context, storeID uuid.UUID, filename string, r io.Reader) (domain.ImportResult, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".xlsx" {
		return domain.ImportResult{}, fmt.Errorf("%w: only .xlsx spreadsheets are supported, got %q", domain.ErrValidation, ext)
	}

	rows, err := readFirstSheet(r)
	if err != nil {
		return domain.ImportResult{}, err
	}
	if len(rows) == 0 {
		return domain.ImportResult{}, fmt.Errorf("%w: spreadsheet is empty", domain.ErrValidation)
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return domain.ImportResult{}, err
	}

	result := domain.ImportResult{Errors: []domain.ImportRowError{}}
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("service.ProductService.ImportProducts: %w", err)
		}
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 2

		p, reason := cols.product(row)
		if reason == "" {
			p.StoreID = storeID
			if _, err := s.Create(ctx, p); err != nil {
				reason = unwrapReason(err)
			}
		}
		if reason != "" {
			s.log.WarnContext(ctx, "product import row failed",
				"store_id", storeID,
				"row", rowNum,
				"reason", reason,
			)
			result.Failed++
			result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Reason: reason})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

func readFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable .xlsx file: %v", domain.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("service.readFirstSheet: %w", err)
	}
	return rows, nil
}

// importColumns holds the zero-based positions of the recognised columns.
// description is -1 when the sheet has no description column.
type importColumns struct {
	name, price, description int
}

func locateColumns(header []string) (importColumns, error) {
	cols := importColumns{
		name:        findHeader(header, nameHeaders),
		price:       findHeader(header, priceHeaders),
		description: findHeader(header, descriptionHeaders),
	}
	if cols.name < 0 {
		return cols, fmt.Errorf("%w: no name column (expected one of %s)", domain.ErrValidation, strings.Join(nameHeaders, ", "))
	}
	if cols.price < 0 {
		return cols, fmt.Errorf("%w: no price column (expected one of %s)", domain.ErrValidation, strings.Join(priceHeaders, ", "))
	}
	return cols, nil
}

// findHeader returns the column of the first alias present in header, or -1.
// Alias order wins over column order.
func findHeader(header, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), alias) {
				return i
			}
		}
	}
	return -1
}

// product builds a product from one row, or returns why it cannot.
func (c importColumns) product(row []string) (domain.Product, string) {
	name := strings.TrimSpace(cell(row, c.name))
	if name == "" {
		return domain.Product{}, "name is empty"
	}
	rawPrice := cell(row, c.price)
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return domain.Product{}, fmt.Sprintf("invalid price %q", rawPrice)
	}
	return domain.Product{Name: name, Price: price, Description: cell(row, c.description)}, ""
}

// cell returns row[i], or "" when the row is shorter or i is negative.
// excelize drops trailing empty cells, so short rows are normal.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParsePrice reads a human-entered price such as "S/ 1.234,50" or "$1,234.50".
// Everything except digits, ',' and '.' is dropped. When both separators are
// present the last one is the decimal separator. A single separator on its
// own is decimal; a repeated one is a thousands separator.
func ParsePrice(raw string) (float64, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	// A currency prefix like "S/." leaves a stray separator in front.
	s := strings.TrimLeft(b.String(), ",.")
	if s == "" {
		return 0, fmt.Errorf("%w: price has no digits", domain.ErrValidation)
	}

	lastComma, lastDot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	decimal := -1
	switch {
	case lastComma >= 0 && lastDot >= 0:
		decimal = max(lastComma, lastDot)
	case lastComma >= 0 && strings.Count(s, ",") == 1:
		decimal = lastComma
	case lastDot >= 0 && strings.Count(s, ".") == 1:
		decimal = lastDot
	}

	b.Reset()
	for i := 0; i < len(s); i++ {
		switch {
		case i == decimal:
			b.WriteByte('.')
		case s[i] != ',' && s[i] != '.':
			b.WriteByte(s[i])
		}
	}
	s = b.String()

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q: %v", domain.ErrValidation, raw, err)
	}
	return math.Round(v*100) / 100, nil
}

func validateProduct(p domain.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("%w: price must be a non-negative number", domain.ErrValidation)
	}
	return nil
}

// unwrapReason strips the sentinel prefix from a validation error so the row
// report reads "name is required" rather than "validation error: name is required".
func unwrapReason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(domain.ErrValidation.Error())+2:]
	}
	return msg
}
