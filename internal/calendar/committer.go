package calendar

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/scheduler"
)

// Committer writes scheduler placements to a calendar as task events.
type Committer struct {
	client Client
	log    *slog.Logger
}

func NewCommitter(client Client, log *slog.Logger) *Committer {
	return &Committer{client: client, log: log}
}

func (c *Committer) CreateEvent(ctx context.Context, req scheduler.EventRequest) (domain.CommittedEvent, error) {
	ev, err := c.client.CreateEvent(ctx, EventInput{
		Summary:     req.Task.Title,
		Description: TaskDescription(req.Task),
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		return domain.CommittedEvent{}, err
	}
	c.log.Debug("calendar event created", "task_id", req.Task.ID, "event_id", ev.ID)
	return domain.CommittedEvent{
		TaskID:   req.Task.ID,
		EventID:  ev.ID,
		Title:    ev.Summary,
		Start:    ev.Start,
		End:      ev.End,
		HTMLLink: ev.HTMLLink,
	}, nil
}

var _ scheduler.EventCommitter = (*Committer)(nil)
