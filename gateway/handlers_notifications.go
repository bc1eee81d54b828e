package gateway

import (
	"net/http"

	"github.com/complyward/console-gateway/relay"
	"github.com/complyward/console-gateway/session"
	"github.com/complyward/console-gateway/upstream"
)

// NotificationsHandler bridges the upstream notification stream to the
// browser as Server-Sent Events. One upstream call, one reader loop, no
// retry: reconnect policy belongs to the browser's EventSource.
func (s *Server) NotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromRequest(r)
		if err != nil || sess.SessionID == "" {
			s.writeUnauthorized(w, "Unauthorized")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			s.writeJSON(w, http.StatusInternalServerError, upstream.StatusResponse{Success: false, Message: "Streaming not supported"})
			return
		}
		flush := func() { flusher.Flush() }

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache, no-transform")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // Disable proxy buffering
		w.WriteHeader(http.StatusOK)
		flush()

		header := http.Header{}
		header.Set("Authorization", "Bearer "+sess.AccessToken)

		resp, err := s.upstream.Stream(r.Context(), upstream.Request{
			Method: http.MethodPost,
			Path:   upstream.PathNotificationStream,
			Header: header,
		}, r.Header.Get("Cookie"))
		if err != nil {
			s.log.Error().Err(err).Msg("notification stream could not be opened")
			relay.WriteStreamError(w, flush, "notification stream unavailable")
			return
		}

		bridge := relay.New(s.log)
		if err := bridge.Run(r.Context(), resp, w, flush); err != nil {
			s.log.Error().Err(err).Msg("notification relay ended with error")
			relay.WriteStreamError(w, flush, "notification stream ended")
		}
	}
}
