package handler

import (
	"net/http"

	"github.com/joliday/backend/internal/service"
)

// sendContact handles POST /contact.
func (s *Server) sendContact(w http.ResponseWriter, r *http.Request) {
	var body contactRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	err := s.contact.Send(r.Context(), service.ContactRequest{
		Email:   body.Email,
		Subject: body.Subject,
		Body:    body.Body,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
