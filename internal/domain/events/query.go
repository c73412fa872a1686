package events

import (
	"context"

	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
)

// View is an event with its organizer summary attached.
type View struct {
	Event
	Organizer *users.Summary `json:"organizer,omitempty"`
}

// Details is the single-event payload: organizer and participant summaries
// plus the viewer-specific joined flag.
type Details struct {
	Event        Event           `json:"event"`
	Organizer    *users.Summary  `json:"organizer,omitempty"`
	Participants []users.Summary `json:"participants"`
	IsJoined     bool            `json:"isJoined"`
}

// Mine groups the actor's events by relationship.
type Mine struct {
	Created []Event `json:"created"`
	Joined  []Event `json:"joined"`
}

// List returns all events in creation order with organizer summaries.
func (s *Service) List(ctx context.Context) ([]View, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachOrganizers(ctx, items)
}

// Search returns events matching the query. Text and proximity filters
// compose with AND; proximity uses the store's geospatial index.
func (s *Service) Search(ctx context.Context, query SearchQuery) ([]View, error) {
	items, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.attachOrganizers(ctx, items)
}

// GetDetails assembles the detail payload. viewerID may be empty (anonymous
// viewing); the joined flag is then false, not an error.
func (s *Service) GetDetails(ctx context.Context, eventID, viewerID string) (Details, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return Details{}, err
	}

	lookup := event.ParticipantIDs
	lookup = append([]string{event.OrganizerID}, lookup...)
	summaries, err := s.users.Summaries(ctx, lookup)
	if err != nil {
		return Details{}, err
	}

	details := Details{
		Event:        *event,
		Participants: []users.Summary{},
		IsJoined:     viewerID != "" && event.HasParticipant(viewerID),
	}
	for i := range summaries {
		if summaries[i].ID == event.OrganizerID {
			details.Organizer = &summaries[i]
		}
		if event.HasParticipant(summaries[i].ID) {
			details.Participants = append(details.Participants, summaries[i])
		}
	}
	return details, nil
}

// GetMine returns the events the actor organizes and the ones they joined.
func (s *Service) GetMine(ctx context.Context, actorID string) (Mine, error) {
	created, err := s.repo.ListByOrganizer(ctx, actorID)
	if err != nil {
		return Mine{}, err
	}
	joined, err := s.repo.ListByParticipant(ctx, actorID)
	if err != nil {
		return Mine{}, err
	}
	if created == nil {
		created = []Event{}
	}
	if joined == nil {
		joined = []Event{}
	}
	return Mine{Created: created, Joined: joined}, nil
}

// Get returns a single event with its organizer summary.
func (s *Service) Get(ctx context.Context, eventID string) (View, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return View{}, err
	}
	views, err := s.attachOrganizers(ctx, []Event{*event})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

func (s *Service) attachOrganizers(ctx context.Context, items []Event) ([]View, error) {
	views := make([]View, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	seen := make(map[string]bool)
	organizerIDs := make([]string, 0)
	for _, event := range items {
		if !seen[event.OrganizerID] {
			seen[event.OrganizerID] = true
			organizerIDs = append(organizerIDs, event.OrganizerID)
		}
	}

	summaries, err := s.users.Summaries(ctx, organizerIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]users.Summary, len(summaries))
	for _, summary := range summaries {
		byID[summary.ID] = summary
	}

	for _, event := range items {
		view := View{Event: event}
		if summary, ok := byID[event.OrganizerID]; ok {
			view.Organizer = &summary
		}
		views = append(views, view)
	}
	return views, nil
}
