package handler

import "net/http"

// createTrip handles POST /trips.
func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body tripRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.trips.Create(r.Context(), me, body.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// listTrips handles GET /trips: the trips the caller owns or belongs to.
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trips, err := s.trips.ListMine(r.Context(), me)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripsToResponse(trips))
}

// listAllTrips handles GET /admin/trips.
func (s *Server) listAllTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.ListAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripsToResponse(trips))
}

// getTrip handles GET /trips/{tripID}.
func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "tripID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trip, err := s.trips.Get(r.Context(), me, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// editTrip handles PUT /trips/{tripID}.
func (s *Server) editTrip(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "tripID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body tripRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.trips.Edit(r.Context(), me, id, body.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// deleteTrip handles DELETE /trips/{tripID}.
func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "tripID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.trips.Delete(r.Context(), me, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// removeMember handles DELETE /trips/{tripID}/members/{userID}.
func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := pathUUID(r, "userID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.trips.RemoveMember(r.Context(), me, tripID, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getStatistics handles GET /trips/statistics/{date}: travellers per
// destination country among the trips running on that date.
func (s *Server) getStatistics(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r, "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	counts, err := s.trips.Statistics(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]countryCountResponse, len(counts))
	for i, c := range counts {
		out[i] = countryCountResponse{Country: c.Country, Users: c.Users}
	}
	writeJSON(w, http.StatusOK, out)
}
