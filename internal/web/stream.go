package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/renderinc/catalog-search/internal/backdrop"
)

// handleBackdropStream sends animation frames as server-sent events until
// the client goes away or the optional "frames" limit is reached. Frames
// are dropped, not queued, when the client reads slower than the loop runs.
func (s *Server) handleBackdropStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("frames"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid frames")
			return
		}
		limit = n
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames := make(chan *backdrop.Scene, 1)
	loop := backdrop.Mount(r.Context(), backdrop.NewScene(sceneRand(r)), s.opts.BackdropInterval, func(sc *backdrop.Scene) {
		select {
		case frames <- sc:
		default:
		}
	})
	defer loop.Release()

	backdropStreams.Inc()
	defer backdropStreams.Dec()

	sent := 0
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.stopping:
			return
		case <-loop.Done():
			return
		case sc := <-frames:
			data, err := json.Marshal(sc)
			if err != nil {
				s.logger.Error("encode frame", zap.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: frame\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()

			sent++
			if limit > 0 && sent >= limit {
				return
			}
		}
	}
}
