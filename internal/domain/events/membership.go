package events

import (
	"context"
	"fmt"

	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
)

// Join adds the actor to the event's participant set and mirrors the event
// into the actor's joined list. The event-side write is a single conditional
// update, so the duplicate and capacity checks cannot race with concurrent
// joins. If the user-side write fails the event-side write is rolled back
// and the join is reported failed; no half-applied join survives.
func (s *Service) Join(ctx context.Context, actorID, eventID string) (Event, error) {
	if err := s.repo.AddParticipant(ctx, eventID, actorID); err != nil {
		return Event{}, err
	}

	if err := s.users.AddJoinedEvent(ctx, actorID, eventID); err != nil {
		if rerr := s.repo.RemoveParticipant(ctx, eventID, actorID); rerr != nil {
			// Compensation failed too; the stores disagree until an operator
			// reconciles them. Log everything needed to do that.
			s.logger.Error().
				Err(rerr).
				Str("event_id", eventID).
				Str("user_id", actorID).
				Msg("join compensation failed; participant set and joined list diverge")
		}
		return Event{}, fmt.Errorf("record joined event: %w", err)
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return Event{}, err
	}

	s.logger.Info().Str("event_id", eventID).Str("user_id", actorID).Msg("user joined event")
	return *event, nil
}

// Participants returns client-safe summaries of everyone who joined.
func (s *Service) Participants(ctx context.Context, eventID string) ([]users.Summary, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(event.ParticipantIDs) == 0 {
		return []users.Summary{}, nil
	}
	return s.users.Summaries(ctx, event.ParticipantIDs)
}
