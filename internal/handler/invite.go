package handler

import "net/http"

// createInvite handles POST /invites.
func (s *Server) createInvite(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body inviteRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	inv, err := s.invites.Create(r.Context(), me, body.TripID, body.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inviteToResponse(inv))
}

// listInvites handles GET /invites: the caller's pending invitations.
func (s *Server) listInvites(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	invites, err := s.invites.ListMine(r.Context(), me)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]inviteResponse, len(invites))
	for i, inv := range invites {
		out[i] = inviteToResponse(inv)
	}
	writeJSON(w, http.StatusOK, out)
}

// markInviteRead handles PUT /invites/{inviteID}/read.
func (s *Server) markInviteRead(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "inviteID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.invites.MarkRead(r.Context(), me, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondToInvite handles POST /invites/{inviteID}/response.
// Accepting returns the joined trip; declining returns 204.
func (s *Server) respondToInvite(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "inviteID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body inviteResponseRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	trip, err := s.invites.Handle(r.Context(), me, id, *body.Accept)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if trip == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(*trip))
}
