package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rmamani/finanzas-go/internal/notify"

	"go.uber.org/zap"
)

// eventsHandler streams the data-changed signal as Server-Sent Events.
// Browser collaborators hold one connection open and reload their working
// set each time a "changed" event arrives; the signal carries no payload.
func eventsHandler(notifier *notify.Notifier, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		id, signals := notifier.Subscribe()
		defer notifier.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		fmt.Fprint(w, "event: connected\ndata: {}\n\n")
		flusher.Flush()

		logger.Debug("sse subscriber connected", zap.String("subscriber_id", id))

		// Keep-alive comments stop proxies from cutting idle streams.
		keepAlive := time.NewTicker(30 * time.Second)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				logger.Debug("sse subscriber disconnected", zap.String("subscriber_id", id))
				return
			case <-signals:
				fmt.Fprint(w, "event: changed\ndata: {}\n\n")
				flusher.Flush()
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			}
		}
	}
}
