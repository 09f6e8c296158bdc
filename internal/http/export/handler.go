package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finviz/internal/export"
	"github.com/MrJamesThe3rd/finviz/internal/http/request"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	StartDate string `json:"start_date,omitempty" validate:"omitempty,txdate"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,txdate"`
}

func (req exportRequest) filter() transaction.ListFilter {
	filter := transaction.ListFilter{}

	if t, err := transaction.ParseDate(req.StartDate); err == nil {
		filter.StartDate = new(t)
	}

	if t, err := transaction.ParseDate(req.EndDate); err == nil {
		filter.EndDate = new(t)
	}

	return filter
}

type exportMetadataResponse struct {
	Files   []string `json:"files"`
	Summary string   `json:"summary"`
}

// run decodes the request and writes the bundle into a fresh temporary
// directory, which the caller must remove.
func (h *Handler) run(w http.ResponseWriter, r *http.Request) (*export.Bundle, string, bool) {
	var req exportRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	tmpDir, err := os.MkdirTemp("", "finviz-export-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, "", false
	}

	bundle, err := h.svc.Export(r.Context(), req.filter(), tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return nil, "", false
	}

	return bundle, tmpDir, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	bundle, tmpDir, ok := h.run(w, r)
	if !ok {
		return
	}
	defer os.RemoveAll(tmpDir)

	files := make([]string, 0, len(bundle.Files))
	for _, f := range bundle.Files {
		files = append(files, filepath.Base(f))
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(exportMetadataResponse{
		Files:   files,
		Summary: export.SummaryText(bundle.Summary),
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	_, tmpDir, ok := h.run(w, r)
	if !ok {
		return
	}
	defer os.RemoveAll(tmpDir)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"report_%s.zip\"", time.Now().Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	err := filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, _ := filepath.Rel(tmpDir, path)

		zf, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
