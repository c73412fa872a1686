package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
	"github.com/mustafanalbant1/Event-Finder/internal/sanitize"
)

// UserDirectory is the slice of the user store the event service needs:
// summary lookup for response assembly and the user-side membership write.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []string) ([]users.Summary, error)
	AddJoinedEvent(ctx context.Context, userID, eventID string) error
}

type Service struct {
	repo   Repository
	users  UserDirectory
	logger zerolog.Logger
}

func NewService(repo Repository, users UserDirectory, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// ValidationError reports missing or malformed event fields, all at once.
type ValidationError struct {
	Fields map[string]string
}

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type CreateInput struct {
	Title        string
	Description  string
	Category     string
	Date         string // RFC3339 or YYYY-MM-DD
	Time         string
	Venue        string
	Address      string
	Lat          *float64
	Lng          *float64
	MaxAttendees int
	Image        string
}

// Create validates and persists a new event with the actor as organizer.
// All missing required fields are reported together.
func (s *Service) Create(ctx context.Context, actorID string, input CreateInput) (Event, error) {
	input.Title = sanitize.Text(input.Title)
	input.Venue = sanitize.Text(input.Venue)
	input.Category = sanitize.Text(input.Category)
	input.Address = sanitize.Text(input.Address)
	input.Description = sanitize.HTML(input.Description)

	fields := make(map[string]string)
	if input.Title == "" {
		fields["title"] = "is required"
	}
	if input.Venue == "" {
		fields["venue"] = "is required"
	}
	date, err := parseEventDate(input.Date)
	if err != nil {
		fields["date"] = err.Error()
	}
	if input.Lat == nil || input.Lng == nil {
		fields["location"] = "lat and lng are required"
	} else if err := validateCoordinates(*input.Lat, *input.Lng); err != nil {
		fields["location"] = err.Error()
	}
	if input.MaxAttendees < 0 {
		fields["maxAttendees"] = "must not be negative"
	}
	if len(fields) > 0 {
		return Event{}, ValidationError{Fields: fields}
	}

	event, err := s.repo.Insert(ctx, Event{
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Date:         date,
		Time:         input.Time,
		Venue:        input.Venue,
		Address:      input.Address,
		Location:     Coordinates{Lat: *input.Lat, Lng: *input.Lng},
		MaxAttendees: input.MaxAttendees,
		Image:        input.Image,
		OrganizerID:  actorID,
	})
	if err != nil {
		return Event{}, err
	}

	s.logger.Info().Str("event_id", event.ID).Str("organizer_id", actorID).Msg("event created")
	return event, nil
}

type UpdateInput struct {
	Title        *string
	Description  *string
	Category     *string
	Date         *string
	Time         *string
	Venue        *string
	Address      *string
	Lat          *float64
	Lng          *float64
	MaxAttendees *int
	Image        *string
}

// Update applies a partial update after the existence and ownership checks.
// The organizer and participant set are not patchable.
func (s *Service) Update(ctx context.Context, actorID, eventID string, input UpdateInput) (Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	if event.OrganizerID != actorID {
		return Event{}, ErrForbidden
	}

	update := UpdateParams{
		Time:         input.Time,
		MaxAttendees: input.MaxAttendees,
		Image:        input.Image,
	}
	fields := make(map[string]string)

	if input.Title != nil {
		title := sanitize.Text(*input.Title)
		if title == "" {
			fields["title"] = "must not be empty"
		}
		update.Title = &title
	}
	if input.Venue != nil {
		venue := sanitize.Text(*input.Venue)
		if venue == "" {
			fields["venue"] = "must not be empty"
		}
		update.Venue = &venue
	}
	if input.Description != nil {
		description := sanitize.HTML(*input.Description)
		update.Description = &description
	}
	if input.Category != nil {
		category := sanitize.Text(*input.Category)
		update.Category = &category
	}
	if input.Address != nil {
		address := sanitize.Text(*input.Address)
		update.Address = &address
	}
	if input.Date != nil {
		date, err := parseEventDate(*input.Date)
		if err != nil {
			fields["date"] = err.Error()
		}
		update.Date = &date
	}
	if (input.Lat == nil) != (input.Lng == nil) {
		fields["location"] = "lat and lng must be given together"
	} else if input.Lat != nil {
		if err := validateCoordinates(*input.Lat, *input.Lng); err != nil {
			fields["location"] = err.Error()
		}
		update.Location = &Coordinates{Lat: *input.Lat, Lng: *input.Lng}
	}
	if input.MaxAttendees != nil && *input.MaxAttendees < 0 {
		fields["maxAttendees"] = "must not be negative"
	}
	if len(fields) > 0 {
		return Event{}, ValidationError{Fields: fields}
	}

	updated, err := s.repo.Update(ctx, eventID, update)
	if err != nil {
		return Event{}, err
	}

	s.logger.Info().Str("event_id", eventID).Msg("event updated")
	return *updated, nil
}

// Delete removes an event after the existence and ownership checks. Joined
// users keep the stale id in their joined list; joined-event queries derive
// from live events, so the stale id is never served.
func (s *Service) Delete(ctx context.Context, actorID, eventID string) error {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != actorID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return err
	}

	s.logger.Info().Str("event_id", eventID).Msg("event deleted")
	return nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return errors.New("lat must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return errors.New("lng must be between -180 and 180")
	}
	return nil
}
