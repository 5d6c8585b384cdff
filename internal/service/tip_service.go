// Package service orchestrates tip operations across the record store,
// the creator profile and the AMQP event stream.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"tipjar/internal/analytics"
	"tipjar/internal/core"
	"tipjar/internal/notify"
	"tipjar/internal/store"
)

// EventPublisher is what the service needs from the notify client. A nil
// publisher means events are simply skipped.
type EventPublisher interface {
	PublishTipEvent(ctx context.Context, event *notify.TipEvent) error
}

// TipService coordinates record appends with milestone detection and
// event publishing. Publishing is best-effort: a recorded tip is never
// un-recorded because the broker was down.
type TipService struct {
	records   store.RecordRepository
	profiles  store.ProfileRepository
	publisher EventPublisher
}

func NewTipService(records store.RecordRepository, profiles store.ProfileRepository, publisher EventPublisher) *TipService {
	return &TipService{
		records:   records,
		profiles:  profiles,
		publisher: publisher,
	}
}

// RecordTip validates and appends a tip, then publishes the tip event.
// The returned record carries the store-assigned ID and timestamp.
func (s *TipService) RecordTip(ctx context.Context, draft core.RecordDraft) (*core.Record, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	before, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}

	rec, err := s.records.Append(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("save tip: %w", err)
	}

	event := notify.NewTipEvent(rec, len(before)+1)
	if crossed := analytics.CrossedMilestone(len(before), len(before)+1); crossed != nil {
		event.Milestone = crossed.Name
		event.MilestoneLevel = crossed.Level
	}

	if err := s.publishTipEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish tip event",
			"record_id", rec.ID, "error", err)
		// Don't fail the request - the tip is saved locally
	}

	return rec, nil
}

// ListTips returns the retained history, newest first.
func (s *TipService) ListTips(ctx context.Context) ([]core.Record, error) {
	return s.records.List(ctx)
}

// FindTip looks up a single record by its store-assigned ID.
func (s *TipService) FindTip(ctx context.Context, id string) (*core.Record, error) {
	return s.records.FindByID(ctx, id)
}

// ClearHistory drops every retained record.
func (s *TipService) ClearHistory(ctx context.Context) error {
	if err := s.records.Clear(ctx); err != nil {
		return fmt.Errorf("clear tips: %w", err)
	}
	return nil
}

// Profile returns the stored creator profile, or the defaults when
// nothing has been saved yet.
func (s *TipService) Profile(ctx context.Context) (core.Profile, error) {
	return s.profiles.LoadProfile(ctx)
}

// UpdateProfile validates and persists the creator profile.
func (s *TipService) UpdateProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.profiles.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *TipService) publishTipEvent(ctx context.Context, event *notify.TipEvent) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping tip event")
		return nil
	}

	return s.publisher.PublishTipEvent(ctx, event)
}

// Close closes the store and publisher connections where they support it.
func (s *TipService) Close() error {
	var errs []error

	if closer, ok := s.records.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("records: %w", err))
		}
	}

	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close tip service: %v", errs)
	}

	return nil
}
