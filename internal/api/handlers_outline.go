package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/render"
)

// handleOutline extracts the outline of an uploaded PDF synchronously.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	renderer, err := render.ForFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	res, pages, err := s.orchestrator.Worker().Outline(r.Context(), filename, data)
	if err != nil {
		if errors.Is(err, parser.ErrUnsupported) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Warn("outline failed", "filename", filename, "error", err)
		jsonError(w, "failed to parse document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.log.Info("outline extracted", "filename", filename, "pages", pages, "headings", len(res.Outline))

	writeResult(w, renderer, filename, res)
}

// readUpload reads the multipart "file" field. On failure it writes the error
// response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (filename string, data []byte, ok bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", nil, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename = sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %q", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

// writeResult renders res. Non-JSON formats are served as attachments named
// after the uploaded file.
func writeResult(w http.ResponseWriter, renderer render.Renderer, filename string, res doctree.Result) {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, res); err != nil {
		jsonError(w, "failed to render result: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	if renderer.Ext() != ".json" {
		name := parser.Stem(filename) + renderer.Ext()
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	w.Write(buf.Bytes())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
