package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// signInWithGoogle handles POST /auth/google.
func (s *Server) signInWithGoogle(w http.ResponseWriter, r *http.Request) {
	var body signInRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, token, err := s.users.SignInWithGoogle(r.Context(), body.IDToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{User: u, Token: token})
}

// getCurrentUser handles GET /users/me.
// A valid token whose account no longer exists is answered 404 by the
// user resolver before reaching here.
func (s *Server) getCurrentUser(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

// streamUserCount handles GET /users/count/stream as server-sent events.
// Each growth of the registered user count is pushed as
// "event: user" with the count as data, until the client goes away.
func (s *Server) streamUserCount(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The server-wide write timeout would cut the stream.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	err := s.users.WatchCount(r.Context(), s.interval, func(n int64) error {
		if _, err := fmt.Fprintf(w, "event: user\ndata: %d\n\n", n); err != nil {
			return err
		}
		return rc.Flush()
	})
	if err != nil {
		// The response has started; log only.
		s.log.WarnContext(r.Context(), "user count stream ended", "error", err)
	}
}
