package handler

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// csvHeaders defines the column names written as the first row of a customer export.
var csvHeaders = []string{
	"Nombre", "Email", "Teléfono", "Fecha de Registro", "Última Actividad",
	"Cantidad de Pedidos", "Total Gastado", "Etiquetas", "Notas", "Dirección",
}

// utf8BOM makes spreadsheet apps read the accented headers as UTF-8.
const utf8BOM = "\uFEFF"

// ExportCustomers handles GET /stores/{storeId}/customers/export.
// It accepts the same filters as ListCustomers and returns every match as CSV.
func (s *Server) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	filters, err := customerFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	store := storeFrom(r.Context())

	customers, err := s.customers.Export(r.Context(), store.ID, filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(store.Subdomain, s.now())))
	w.WriteHeader(http.StatusOK)

	if err := writeCustomersCSV(w, customers); err != nil {
		// Headers are already sent; all that is left is to record it.
		s.log.WarnContext(r.Context(), "customer export interrupted", "store_id", store.ID, "error", err)
	}
}

// exportFilename returns clientes-{subdomain}-{YYYY-MM-DD}.csv, dated in UTC.
func exportFilename(subdomain string, now time.Time) string {
	return fmt.Sprintf("clientes-%s-%s.csv", subdomain, now.UTC().Format("2006-01-02"))
}

// writeCustomersCSV writes the header and one row per customer.
// Every field is quoted and embedded quotes are doubled (RFC 4180).
// encoding/csv only quotes fields that need it, so rows are written by hand.
func writeCustomersCSV(w io.Writer, customers []domain.Customer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(utf8BOM)
	writeCSVRecord(bw, csvHeaders)
	for _, c := range customers {
		writeCSVRecord(bw, customerToCSVRecord(c))
	}
	return bw.Flush()
}

// writeCSVRecord writes fields as one quoted CSV line ending in CRLF.
// bufio.Writer keeps the first error and reports it from Flush.
func writeCSVRecord(bw *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteByte('"')
		bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
		bw.WriteByte('"')
	}
	bw.WriteString("\r\n")
}

// customerToCSVRecord encodes a customer in csvHeaders order.
// Missing dates are empty strings; tags are joined with ", ".
func customerToCSVRecord(c domain.Customer) []string {
	return []string{
		c.DisplayName,
		c.Email,
		c.Phone,
		formatOptionalDate(c.CreatedAt),
		formatOptionalDate(c.LastOrderAt),
		strconv.Itoa(c.OrderCount),
		strconv.FormatFloat(c.TotalSpent, 'f', 2, 64),
		strings.Join(c.Tags, ", "),
		c.Notes,
		c.Address,
	}
}

// formatOptionalDate returns t as YYYY-MM-DD in UTC, or "" if t is nil.
func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
