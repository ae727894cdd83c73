package http

import (
	"log/slog"
	"net/http"

	"github.com/giovannicg/INMEDT/internal/importer"
	"github.com/giovannicg/INMEDT/pkg/httputil"
)

// maxImportBytes caps a catalog import document at 20 MiB.
const maxImportBytes = 20 << 20

// ImportHandler handles HTTP requests for the catalog import endpoint.
type ImportHandler struct {
	importer *importer.Importer
	logger   *slog.Logger
}

// NewImportHandler creates a new catalog import HTTP handler.
func NewImportHandler(imp *importer.Importer, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{importer: imp, logger: logger}
}

// ImportCatalog handles POST /api/v1/admin/catalog/import
//
// The body is the nested catalog JSON document. The import is idempotent:
// existing categories, products, variants, and sale units are reused by name.
func (h *ImportHandler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	report, err := h.importer.Import(r.Context(), r.Body)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}
