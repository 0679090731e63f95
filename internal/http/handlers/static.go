package handlers

import (
	"context"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"fieldquote/internal/infra"
)

// BlobReader is the read side of the render store.
type BlobReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// StaticFiles serves stored render images. Rendered concepts are immutable
// once written, so responses are cacheable. Key sanitization lives in the
// store; anything it rejects reads as not found.
func StaticFiles(store BlobReader, logger infra.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		data, err := store.Read(r.Context(), key)
		if err != nil {
			logger.Debug().Err(err).Str("key", key).Msg("static: read miss")
			http.NotFound(w, r)
			return
		}
		if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write(data)
	}
}
