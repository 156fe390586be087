// Package calendar renders trip activities as an iCalendar document.
package calendar

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/joliday/backend/internal/domain"
)

// ProductID identifies this application in generated documents.
const ProductID = "-//JoliDay//Holiday Planner//EN"

// Serializer converts calendar events to iCalendar bytes.
type Serializer struct {
	now func() time.Time
}

// NewSerializer constructs a Serializer.
func NewSerializer() *Serializer {
	return &Serializer{now: time.Now}
}

// Serialize writes one VEVENT per event inside a single VCALENDAR.
// Times are written in UTC.
func (s *Serializer) Serialize(events []domain.CalendarEvent) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)

	stamp := s.now().UTC()
	for _, e := range events {
		ev := cal.AddEvent(e.UID)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(e.Summary)
		ev.SetDescription(e.Description)
		ev.SetLocation(e.Location)
		ev.SetStartAt(e.Start.UTC())
		ev.SetEndAt(e.End.UTC())
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("calendar.Serializer.Serialize: %w", err)
	}
	return buf.Bytes(), nil
}
