package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleClient is a Client backed by the Google Calendar v3 API.
type GoogleClient struct {
	srv        *gcal.Service
	calendarID string
	loc        *time.Location
}

// NewGoogleService builds a Calendar API service over an authenticated
// HTTP client. Extra options (such as option.WithEndpoint) are appended.
func NewGoogleService(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*gcal.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return srv, nil
}

// NewGoogleClient binds srv to calendarID. Times are written and all-day
// events interpreted in loc.
func NewGoogleClient(srv *gcal.Service, calendarID string, loc *time.Location) *GoogleClient {
	if calendarID == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.Local
	}
	return &GoogleClient{srv: srv, calendarID: calendarID, loc: loc}
}

// ListEvents follows page tokens until maxResults events are collected or
// the calendar has no further pages.
func (c *GoogleClient) ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int) ([]Event, error) {
	if maxResults <= 0 {
		maxResults = DefaultListLimit
	}

	out := make([]Event, 0, maxResults)
	pageToken := ""
	for {
		call := c.srv.Events.List(c.calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			MaxResults(int64(maxResults - len(out))).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, classify("listing events", err)
		}

		for _, item := range resp.Items {
			if item.Status == "cancelled" {
				continue
			}
			e, err := c.fromAPI(item)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
			if len(out) == maxResults {
				return out, nil
			}
		}

		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (c *GoogleClient) CreateEvent(ctx context.Context, in EventInput) (Event, error) {
	if err := in.validate(); err != nil {
		return Event{}, err
	}
	created, err := c.srv.Events.Insert(c.calendarID, c.toAPI(in)).Context(ctx).Do()
	if err != nil {
		return Event{}, classify("creating event", err)
	}
	return c.fromAPI(created)
}

func (c *GoogleClient) UpdateEvent(ctx context.Context, eventID string, in EventInput) (Event, error) {
	if err := in.validate(); err != nil {
		return Event{}, err
	}
	updated, err := c.srv.Events.Patch(c.calendarID, eventID, c.toAPI(in)).Context(ctx).Do()
	if err != nil {
		return Event{}, classify("updating event", err)
	}
	return c.fromAPI(updated)
}

func (c *GoogleClient) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return classify("deleting event", err)
	}
	return nil
}

func (c *GoogleClient) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	resp, err := c.srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, classify("listing calendars", err)
	}
	out := make([]CalendarInfo, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, CalendarInfo{
			ID:       item.Id,
			Summary:  item.Summary,
			Primary:  item.Primary,
			TimeZone: item.TimeZone,
		})
	}
	return out, nil
}

func (c *GoogleClient) toAPI(in EventInput) *gcal.Event {
	return &gcal.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Start: &gcal.EventDateTime{
			DateTime: in.Start.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: in.End.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
	}
}

func (c *GoogleClient) fromAPI(item *gcal.Event) (Event, error) {
	start, allDay, err := c.parseTime(item.Start)
	if err != nil {
		return Event{}, fmt.Errorf("event %s start: %w", item.Id, err)
	}
	end, _, err := c.parseTime(item.End)
	if err != nil {
		return Event{}, fmt.Errorf("event %s end: %w", item.Id, err)
	}
	return Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		HTMLLink:    item.HtmlLink,
		AllDay:      allDay,
	}, nil
}

// parseTime reads a timed (dateTime) or all-day (date) boundary.
func (c *GoogleClient) parseTime(dt *gcal.EventDateTime) (time.Time, bool, error) {
	if dt == nil {
		return time.Time{}, false, errors.New("missing time")
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		return t, false, err
	}
	t, err := time.ParseInLocation("2006-01-02", dt.Date, c.loc)
	return t, true, err
}

// classify wraps err, marking HTTP 403 and "Forbidden" answers as
// domain.ErrCalendarPermissionDenied.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrCalendarPermissionDenied, err)
	}
	if strings.Contains(err.Error(), "403") || strings.Contains(err.Error(), "Forbidden") {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrCalendarPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var (
	_ Client         = (*GoogleClient)(nil)
	_ CalendarLister = (*GoogleClient)(nil)
)
