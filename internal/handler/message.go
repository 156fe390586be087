package handler

import "net/http"

// listMessages handles GET /trips/{tripID}/messages: the most recent
// messages of the trip chat, oldest first.
func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	me, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}

	msgs, err := s.messages.List(r.Context(), me, tripID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// sendMessage handles POST /trips/{tripID}/messages.
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	me, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}
	var body messageRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.messages.Send(r.Context(), me, tripID, body.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
