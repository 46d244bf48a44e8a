package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/productlist/internal/core"
	"github.com/JonMunkholm/productlist/internal/logging"
	"github.com/JonMunkholm/productlist/internal/render"
	"github.com/JonMunkholm/productlist/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

const (
	// formMemory is how much of a multipart form is kept in memory before
	// spilling to temporary files.
	formMemory = 8 << 20

	// formOverhead allows for multipart boundaries and headers on top of
	// the file itself.
	formOverhead = 64 << 10
)

var (
	errNoFile      = errors.New("no file provided")
	errInvalidForm = errors.New("invalid upload form")
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.catalogs.Status()
	data := templates.IndexData{
		Title:          "Product list converter",
		Layout:         s.service.Layout().String(),
		CatalogsLoaded: st.Loaded,
		LibraryEntries: st.LibraryEntries,
		MasterEntries:  st.MasterEntries,
	}
	if st.Loaded {
		data.LoadedAt = st.LoadedAt.Format(time.DateTime)
	}
	for _, g := range render.Groups() {
		group := templates.ArtifactGroup{Name: g}
		for _, def := range render.ByGroup(g) {
			group.Artifacts = append(group.Artifacts, templates.ArtifactLink{
				Key:         def.Key,
				Label:       def.Label,
				Description: def.Description,
				FileName:    def.FileName,
			})
		}
		data.Groups = append(data.Groups, group)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// handleHealth reports whether conversions can be served.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := s.catalogs.Current() != nil
	status, code := "ok", http.StatusOK
	if !loaded {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":         status,
		"catalogsLoaded": loaded,
		"conversions":    s.service.LimiterStatus(),
	})
}

// handleListArtifacts lists the downloadable artifacts.
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, render.All())
}

// handleCatalogStatus describes the active catalogs.
func (s *Server) handleCatalogStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalogs.Status())
}

// handleCatalogReload reloads both catalogs. A failed reload keeps the
// previous catalogs active.
func (s *Server) handleCatalogReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if timeout := s.cfg.Catalog.LoadTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if _, err := s.catalogs.Load(ctx); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("catalogs reloaded via api")
	writeJSON(w, http.StatusOK, s.catalogs.Status())
}

// previewResponse is a conversion with its presentation lines.
type previewResponse struct {
	*core.Conversion
	Presentation []core.PresentationLine `json:"presentation"`
}

// handlePreview converts an upload and returns the reconciled rows as JSON
// instead of a file.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	conv, err := s.convertUpload(w, r)
	if err != nil {
		s.respondConversionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Conversion: conv, Presentation: conv.Presentation()})
}

// handleConvert converts an upload and returns the requested artifact.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	def, err := render.Lookup(chi.URLParam(r, "artifact"))
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	conv, err := s.convertUpload(w, r)
	if err != nil {
		s.respondConversionError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := def.Renderer.Render(&buf, conv); err != nil {
		respondError(w, r, fmt.Errorf("render %s: %w", def.Key, err), http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("artifact rendered",
		"artifact", def.Key,
		"conversion_id", conv.ID,
		"bytes", buf.Len(),
	)

	h := w.Header()
	h.Set("Content-Type", def.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": def.FileName}))
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set("X-Conversion-ID", conv.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// convertUpload reads the "file" form field and runs the conversion.
func (s *Server) convertUpload(w http.ResponseWriter, r *http.Request) (*core.Conversion, error) {
	if limit := s.cfg.Upload.MaxFileSize; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	}

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, fmt.Errorf("%w: %w", core.ErrFileTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %w", errInvalidForm, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	return s.service.Convert(r.Context(), header.Filename, file)
}

func (s *Server) respondConversionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrBusy) {
		w.Header().Set("Retry-After", "5")
	}
	respondError(w, r, err, statusFor(err))
}
