package domain

import "time"

// CalendarEvent is one entry of a trip's calendar export.
// End is exclusive: a single-day activity ends at midnight of the next day.
type CalendarEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// CalendarEvents projects the trip's activities into calendar events,
// in the trip's activity order.
func (t Trip) CalendarEvents() []CalendarEvent {
	events := make([]CalendarEvent, 0, len(t.Activities))
	for _, a := range t.Activities {
		events = append(events, CalendarEvent{
			UID:         a.ID.String(),
			Summary:     a.Name,
			Description: a.Description,
			Location:    a.Address.Location(),
			Start:       DateOf(a.StartDate),
			End:         DateOf(a.EndDate).AddDate(0, 0, 1),
		})
	}
	return events
}
