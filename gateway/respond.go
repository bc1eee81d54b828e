package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/complyward/console-gateway/upstream"
)

const contentTypeJSON = "application/json; charset=utf-8"

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeBadRequest reports a missing or invalid required field.
func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, upstream.StatusResponse{Success: false, Message: message})
}

func (s *Server) writeUnauthorized(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusUnauthorized, upstream.StatusResponse{Success: false, Message: message})
}

// writeUpstreamFailure handles transport and parse failures: a generic
// message goes to the caller, the detail only into the log.
func (s *Server) writeUpstreamFailure(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("upstream call failed")
	s.writeJSON(w, http.StatusInternalServerError, upstream.StatusResponse{Success: false, Message: "Upstream service unavailable"})
}

// passthrough re-emits the raw upstream response (status and body)
// unmodified. Cookie writes must happen before calling this.
func (s *Server) passthrough(w http.ResponseWriter, resp *upstream.Response) {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeJSON
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func decodeJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
