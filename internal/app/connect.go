package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/config"
	"github.com/alexanderramin/polylearner/internal/llm"
)

// ErrCalendarDisabled is returned by ConnectCalendar when the config does
// not enable a calendar.
var ErrCalendarDisabled = errors.New("calendar disabled")

// ConnectCalendar opens the configured Google calendar. A missing token
// without auth yields domain.ErrNoCalendarAccess. With DryRun set, events
// are written to memory while busy time still comes from Google.
func ConnectCalendar(ctx context.Context, cfg config.Config, auth calendar.Authorizer, log *slog.Logger) (calendar.Client, error) {
	if !cfg.Calendar.Enabled {
		return nil, ErrCalendarDisabled
	}
	oauthCfg, err := calendar.LoadOAuthConfig(cfg.Calendar.CredentialsFile)
	if err != nil {
		return nil, err
	}
	httpClient, err := calendar.HTTPClient(ctx, oauthCfg, calendar.TokenFile(cfg.Calendar.TokenFile), auth, log)
	if err != nil {
		return nil, err
	}
	srv, err := calendar.NewGoogleService(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	var client calendar.Client = calendar.NewGoogleClient(srv, cfg.Calendar.CalendarID, loc)
	if cfg.Calendar.DryRun {
		log.Info("calendar dry run, events stay in memory")
		client = calendar.NewDryRun(client)
	}
	return client, nil
}

// NewLLMClient builds the configured provider, rate limited when
// RatePerMinute is set. A disabled config yields llm.DisabledClient so
// every intelligence feature takes its deterministic fallback.
func NewLLMClient(cfg llm.LLMConfig, log *slog.Logger) (llm.LLMClient, error) {
	if !cfg.Enabled {
		return llm.DisabledClient{}, nil
	}
	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LogCalls {
		observer = llm.NewSlogObserver(log)
	}
	client, err := llm.NewClient(cfg, observer)
	if err != nil {
		return nil, fmt.Errorf("building llm client: %w", err)
	}
	return llm.NewRateLimited(client, cfg.RatePerMinute), nil
}
