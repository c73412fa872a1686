package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("event not found")
	ErrForbidden        = errors.New("only the organizer may modify this event")
	ErrAlreadyJoined    = errors.New("already joined this event")
	ErrCapacityExceeded = errors.New("event is full")
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Event is the canonical event record. The organizer id is set at creation
// and never changes; the participant set only grows (there is no leave
// operation).
type Event struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Category       string      `json:"category,omitempty"`
	Date           time.Time   `json:"date"`
	Time           string      `json:"time,omitempty"`
	Venue          string      `json:"venue"`
	Address        string      `json:"address,omitempty"`
	Location       Coordinates `json:"location"`
	MaxAttendees   int         `json:"maxAttendees,omitempty"`
	ParticipantIDs []string    `json:"participantIds"`
	Image          string      `json:"image,omitempty"`
	OrganizerID    string      `json:"organizerId"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// HasParticipant reports whether userID is in the participant set.
func (e Event) HasParticipant(userID string) bool {
	for _, id := range e.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// UpdateParams carries patch semantics for event mutation: nil fields are
// left untouched. Organizer and participants are deliberately absent; no
// patch may change them.
type UpdateParams struct {
	Title        *string
	Description  *string
	Category     *string
	Date         *time.Time
	Time         *string
	Venue        *string
	Address      *string
	Location     *Coordinates
	MaxAttendees *int
	Image        *string
}

// Proximity restricts a search to events within RadiusKm of a point,
// measured as great-circle distance.
type Proximity struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// SearchQuery composes text and location filters with logical AND. Empty
// fields do not filter.
type SearchQuery struct {
	Title string
	Venue string
	Near  *Proximity
}

type Repository interface {
	Insert(ctx context.Context, event Event) (Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, update UpdateParams) (*Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Event, error)
	Search(ctx context.Context, query SearchQuery) ([]Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]Event, error)
	ListByParticipant(ctx context.Context, userID string) ([]Event, error)

	// AddParticipant appends userID to the event's participant set. The
	// membership and capacity predicates are evaluated atomically with the
	// append: concurrent calls cannot overshoot capacity or double-add.
	// Returns ErrNotFound, ErrAlreadyJoined, or ErrCapacityExceeded.
	AddParticipant(ctx context.Context, eventID, userID string) error

	// RemoveParticipant undoes AddParticipant. It exists only as the
	// compensating action for a failed join; there is no public leave.
	RemoveParticipant(ctx context.Context, eventID, userID string) error
}
