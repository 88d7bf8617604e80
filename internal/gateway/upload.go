package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cleoai/cleo/internal/assets"
	"github.com/cleoai/cleo/internal/validate"
)

// handleUpload accepts a single image in the multipart field "image",
// validates size and media type against the same limits as inline assets,
// stores it, and returns a durable reference URL.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorPayload{
			Status:  http.StatusServiceUnavailable,
			Message: "Uploads are not enabled",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 2*s.limits.AssetMaxBytes+64*1024)
	file, _, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorPayload{
			Status:  http.StatusBadRequest,
			Message: "Image file is required",
		})
		return
	}
	defer file.Close()

	// Read one byte past the ceiling so oversize files fail the size check
	// instead of silently truncating.
	data, err := io.ReadAll(io.LimitReader(file, s.limits.AssetMaxBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorPayload{
			Status:  http.StatusBadRequest,
			Message: "Failed to read upload",
		})
		return
	}

	mime, rej := validate.ImageBytes(data, s.limits)
	if rej != nil {
		writeJSON(w, rej.Status, ErrorPayload{Status: rej.Status, Message: rej.Message})
		return
	}

	asset, err := s.assets.Put(r.Context(), data, mime)
	if err != nil {
		s.log.Error().Err(err).Msg("storing upload failed")
		writeJSON(w, http.StatusInternalServerError, ErrorPayload{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store upload",
		})
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{URL: s.assetURL(r, asset)})
}

// handleAsset serves a stored asset back by its reference name.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		handleNotFound(w, r)
		return
	}

	name := chi.URLParam(r, "name")
	id := strings.TrimSuffix(name, path.Ext(name))

	asset, data, err := s.assets.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			handleNotFound(w, r)
			return
		}
		s.log.Error().Err(err).Str("id", id).Msg("reading asset failed")
		writeJSON(w, http.StatusInternalServerError, ErrorPayload{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read asset",
		})
		return
	}

	w.Header().Set("Content-Type", asset.MIME)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}

// assetURL builds the reference URL returned to the uploader. A configured
// base URL wins; otherwise the URL is derived from the request.
func (s *Server) assetURL(r *http.Request, asset assets.Asset) string {
	base := s.cfg.Uploads.BaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimSuffix(base, "/") + "/assets/" + asset.Filename()
}
