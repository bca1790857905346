// Package export renders schedules for other calendar tools.
package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/alexanderramin/polylearner/internal/domain"
)

const (
	ProductID    = "-//polylearner//weekly schedule//EN"
	CalendarName = "Polylearner Schedule"
)

// ICS renders blocks as a PUBLISH calendar. Event ids are derived from the
// task id and start time so re-exporting a week yields the same UIDs.
func ICS(blocks []domain.ScheduledBlock, stamp time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(CalendarName)

	for _, b := range blocks {
		ev := cal.AddEvent(EventUID(b))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(b.Start.UTC())
		ev.SetEndAt(b.End.UTC())
		ev.SetSummary(b.Title)
		ev.SetDescription(description(b))
	}
	return []byte(cal.Serialize())
}

func EventUID(b domain.ScheduledBlock) string {
	return fmt.Sprintf("task-%d-%s@polylearner", b.TaskID, b.Start.UTC().Format("20060102T150405Z"))
}

func description(b domain.ScheduledBlock) string {
	desc := fmt.Sprintf("Category: %s\nDuration: %.2fh", b.Category, b.DurationHours)
	if b.Reason != "" {
		desc += "\nReason: " + b.Reason
	}
	return desc
}
