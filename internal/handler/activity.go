package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/joliday/backend/internal/domain"
)

// tripScope resolves the caller and the {tripID} path parameter shared by
// every route under /trips/{tripID}.
func (s *Server) tripScope(w http.ResponseWriter, r *http.Request) (domain.User, uuid.UUID, bool) {
	me, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return domain.User{}, uuid.Nil, false
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		s.writeError(w, r, err)
		return domain.User{}, uuid.Nil, false
	}
	return me, tripID, true
}

// listActivities handles GET /trips/{tripID}/activities.
func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	me, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}

	activities, err := s.activities.List(r.Context(), me, tripID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]activityResponse, len(activities))
	for i, a := range activities {
		out[i] = activityToResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

// createActivity handles POST /trips/{tripID}/activities.
func (s *Server) createActivity(w http.ResponseWriter, r *http.Request) {
	me, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}
	var body activityRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.activities.Create(r.Context(), me, tripID, body.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activityToResponse(created))
}

// getActivity handles GET /trips/{tripID}/activities/{activityID}.
func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	me, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "activityID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.activities.Get(r.Context(), me, tripID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(a))
}

// editActivity handles PUT /trips/{tripID}/activities/{activityID}.
func (s *Server) editActivity(w http.ResponseWriter, r *http.Request) {
	me, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "activityID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body activityRequest
	if err := decodeAndValidate(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.activities.Edit(r.Context(), me, tripID, id, body.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(updated))
}

// deleteActivity handles DELETE /trips/{tripID}/activities/{activityID}.
func (s *Server) deleteActivity(w http.ResponseWriter, r *http.Request) {
	me, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "activityID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.activities.Delete(r.Context(), me, tripID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportCalendar handles GET /trips/{tripID}/calendar.ics.
// The document is served as an attachment named calendar.ics.
func (s *Server) exportCalendar(w http.ResponseWriter, r *http.Request) {
	me, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}

	doc, err := s.activities.CalendarExport(r.Context(), me, tripID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
