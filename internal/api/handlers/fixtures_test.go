package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mustafanalbant1/Event-Finder/internal/api/middleware"
	"github.com/mustafanalbant1/Event-Finder/internal/auth"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/events"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/ids"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
)

// fakeUserRepo is an in-memory users.Repository.
type fakeUserRepo struct {
	mu    sync.Mutex
	byID  map[string]users.User
	order []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]users.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return users.User{}, users.ErrEmailTaken
		}
	}
	user.ID = ids.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = user
	r.order = append(r.order, user.ID)
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id string, update users.ProfileUpdate) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		for otherID, other := range r.byID {
			if otherID != id && other.Email == *update.Email {
				return nil, users.ErrEmailTaken
			}
		}
		user.Email = *update.Email
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	user.UpdatedAt = time.Now().UTC()
	r.byID[id] = user
	return &user, nil
}

// Summaries and AddJoinedEvent make the fake double as events.UserDirectory.
func (r *fakeUserRepo) Summaries(_ context.Context, idList []string) ([]users.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]users.Summary, 0, len(idList))
	seen := make(map[string]bool)
	for _, id := range idList {
		if seen[id] {
			continue
		}
		seen[id] = true
		if user, ok := r.byID[id]; ok {
			out = append(out, user.Summary())
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AddJoinedEvent(_ context.Context, userID, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return users.ErrNotFound
	}
	for _, id := range user.JoinedEventIDs {
		if id == eventID {
			return nil
		}
	}
	user.JoinedEventIDs = append(user.JoinedEventIDs, eventID)
	r.byID[userID] = user
	return nil
}

// fakeEventRepo is an in-memory events.Repository with the same atomic
// contract on AddParticipant as the real store.
type fakeEventRepo struct {
	mu    sync.Mutex
	byID  map[string]events.Event
	order []string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]events.Event)}
}

func (r *fakeEventRepo) Insert(_ context.Context, event events.Event) (events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = ids.New()
	event.ParticipantIDs = []string{}
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt
	r.byID[event.ID] = event
	r.order = append(r.order, event.ID)
	return event, nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.byID[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &event, nil
}

func (r *fakeEventRepo) Update(_ context.Context, id string, update events.UpdateParams) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.byID[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	if update.Title != nil {
		event.Title = *update.Title
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.Category != nil {
		event.Category = *update.Category
	}
	if update.Date != nil {
		event.Date = *update.Date
	}
	if update.Time != nil {
		event.Time = *update.Time
	}
	if update.Venue != nil {
		event.Venue = *update.Venue
	}
	if update.Address != nil {
		event.Address = *update.Address
	}
	if update.Location != nil {
		event.Location = *update.Location
	}
	if update.MaxAttendees != nil {
		event.MaxAttendees = *update.MaxAttendees
	}
	if update.Image != nil {
		event.Image = *update.Image
	}
	event.UpdatedAt = time.Now().UTC()
	r.byID[id] = event
	return &event, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeEventRepo) List(_ context.Context) ([]events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, 0, len(r.byID))
	for _, id := range r.order {
		if event, ok := r.byID[id]; ok {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Search(ctx context.Context, query events.SearchQuery) ([]events.Event, error) {
	all, _ := r.List(ctx)
	out := make([]events.Event, 0)
	for _, event := range all {
		if query.Title != "" && !containsFold(event.Title, query.Title) {
			continue
		}
		if query.Venue != "" && !containsFold(event.Venue, query.Venue) {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func (r *fakeEventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]events.Event, error) {
	all, _ := r.List(ctx)
	out := make([]events.Event, 0)
	for _, event := range all {
		if event.OrganizerID == organizerID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListByParticipant(ctx context.Context, userID string) ([]events.Event, error) {
	all, _ := r.List(ctx)
	out := make([]events.Event, 0)
	for _, event := range all {
		if event.HasParticipant(userID) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) AddParticipant(_ context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.byID[eventID]
	if !ok {
		return events.ErrNotFound
	}
	if event.HasParticipant(userID) {
		return events.ErrAlreadyJoined
	}
	if event.MaxAttendees > 0 && len(event.ParticipantIDs) >= event.MaxAttendees {
		return events.ErrCapacityExceeded
	}
	event.ParticipantIDs = append(event.ParticipantIDs, userID)
	r.byID[eventID] = event
	return nil
}

func (r *fakeEventRepo) RemoveParticipant(_ context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.byID[eventID]
	if !ok {
		return events.ErrNotFound
	}
	kept := event.ParticipantIDs[:0]
	for _, id := range event.ParticipantIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	event.ParticipantIDs = kept
	r.byID[eventID] = event
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// testEnv bundles the handlers with their in-memory backing stores.
type testEnv struct {
	userRepo  *fakeUserRepo
	eventRepo *fakeEventRepo
	users     *users.Service
	events    *events.Service
	jwt       *auth.JWTManager

	auth        *AuthHandler
	usersAPI    *UsersHandler
	eventsAPI   *EventsHandler
	uploadStore *fakeUploadStore
}

type fakeUploadStore struct {
	saved int
	err   error
}

func (s *fakeUploadStore) Save(_ context.Context, _ io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved++
	return fmt.Sprintf("/uploads/test-%d.png", s.saved), nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	userRepo := newFakeUserRepo()
	eventRepo := newFakeEventRepo()

	userService := users.NewService(userRepo, logger)
	eventService := events.NewService(eventRepo, userRepo, logger)
	jwt := auth.NewJWTManager("handler-test-secret", time.Hour, "eventfinder")
	store := &fakeUploadStore{}

	return &testEnv{
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		users:       userService,
		events:      eventService,
		jwt:         jwt,
		auth:        NewAuthHandler(userService, jwt),
		usersAPI:    NewUsersHandler(userService, eventService),
		eventsAPI:   NewEventsHandler(eventService, store),
		uploadStore: store,
	}
}

// register creates a user directly through the service and returns it.
func (env *testEnv) register(t *testing.T, name, email string) users.User {
	t.Helper()
	user, err := env.users.Register(context.Background(), users.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("registering %s: %v", email, err)
	}
	return user
}

// authed stamps the user into the request context the way the auth
// middleware would.
func authed(req *http.Request, user users.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func doJSON(t *testing.T, handler http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}
