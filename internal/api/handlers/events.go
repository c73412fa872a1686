package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mustafanalbant1/Event-Finder/internal/api/middleware"
	"github.com/mustafanalbant1/Event-Finder/internal/api/respond"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/events"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/ids"
	"github.com/mustafanalbant1/Event-Finder/internal/metrics"
	"github.com/mustafanalbant1/Event-Finder/internal/uploads"
)

type EventsHandler struct {
	Events  *events.Service
	Uploads uploads.Store
}

func NewEventsHandler(service *events.Service, store uploads.Store) *EventsHandler {
	return &EventsHandler{Events: service, Uploads: store}
}

// List returns every event with its organizer summary, oldest first.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.Events.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, views)
}

// Search filters events by title, venue, and proximity. Filters compose with
// AND; no filters at all is just the full listing.
func (h *EventsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, err := events.ParseSearchFilters(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views, err := h.Events.Search(r.Context(), query)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, views)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	view, err := h.Events.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, view)
}

// Details returns the event with organizer and participant summaries plus
// the viewer's joined flag. Anonymous viewers get isJoined=false.
func (h *EventsHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	viewerID := ""
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		viewerID = user.ID
	}

	details, err := h.Events.GetDetails(r.Context(), id, viewerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, details)
}

type createEventRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Venue        string   `json:"venue"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	MaxAttendees int      `json:"maxAttendees"`
}

// Create accepts either a JSON body or multipart/form-data with an optional
// image part. The acting user becomes the organizer.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var input events.CreateInput
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		input, err = h.createInputFromForm(r)
	} else {
		input, err = createInputFromJSON(r)
	}
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrUnsupportedType):
			respond.Error(w, r, http.StatusBadRequest, "unsupported image type", err)
		case errors.Is(err, uploads.ErrTooLarge):
			respond.Error(w, r, http.StatusRequestEntityTooLarge, "image too large", err)
		default:
			writeBodyError(w, r, err)
		}
		return
	}

	event, err := h.Events.Create(r.Context(), user.ID, input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	metrics.EventsCreatedTotal.Inc()
	respond.JSON(w, http.StatusCreated, event)
}

func createInputFromJSON(r *http.Request) (events.CreateInput, error) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return events.CreateInput{}, err
	}
	return events.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Date:         req.Date,
		Time:         req.Time,
		Venue:        req.Venue,
		Address:      req.Address,
		Lat:          req.Lat,
		Lng:          req.Lng,
		MaxAttendees: req.MaxAttendees,
	}, nil
}

func (h *EventsHandler) createInputFromForm(r *http.Request) (events.CreateInput, error) {
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		return events.CreateInput{}, err
	}

	input := events.CreateInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Venue:       r.FormValue("venue"),
		Address:     r.FormValue("address"),
	}
	if v := r.FormValue("lat"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return events.CreateInput{}, events.FilterError{Field: "lat", Message: "must be a number"}
		}
		input.Lat = &lat
	}
	if v := r.FormValue("lng"); v != "" {
		lng, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return events.CreateInput{}, events.FilterError{Field: "lng", Message: "must be a number"}
		}
		input.Lng = &lng
	}
	if v := r.FormValue("maxAttendees"); v != "" {
		max, err := strconv.Atoi(v)
		if err != nil {
			return events.CreateInput{}, events.FilterError{Field: "maxAttendees", Message: "must be an integer"}
		}
		input.MaxAttendees = max
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil
		}
		return events.CreateInput{}, err
	}
	defer file.Close()

	url, err := h.Uploads.Save(r.Context(), file)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(uploadResult(err)).Inc()
		return events.CreateInput{}, err
	}
	metrics.UploadsTotal.WithLabelValues("success").Inc()
	input.Image = url
	return input, nil
}

func uploadResult(err error) string {
	if errors.Is(err, uploads.ErrUnsupportedType) || errors.Is(err, uploads.ErrTooLarge) {
		return "rejected"
	}
	return "error"
}

type updateEventRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Category     *string  `json:"category"`
	Date         *string  `json:"date"`
	Time         *string  `json:"time"`
	Venue        *string  `json:"venue"`
	Address      *string  `json:"address"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	MaxAttendees *int     `json:"maxAttendees"`
}

// Update applies a partial edit; only the organizer may call it.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	event, err := h.Events.Update(r.Context(), user.ID, id, events.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Date:         req.Date,
		Time:         req.Time,
		Venue:        req.Venue,
		Address:      req.Address,
		Lat:          req.Lat,
		Lng:          req.Lng,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, event)
}

// Delete removes an event; only the organizer may call it.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	if err := h.Events.Delete(r.Context(), user.ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Join adds the acting user as a participant.
func (h *EventsHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	event, err := h.Events.Join(r.Context(), user.ID, id)
	if err != nil {
		metrics.EventJoinsTotal.WithLabelValues(joinResult(err)).Inc()
		writeDomainError(w, r, err)
		return
	}

	metrics.EventJoinsTotal.WithLabelValues("success").Inc()
	respond.JSON(w, http.StatusOK, event)
}

func joinResult(err error) string {
	switch {
	case errors.Is(err, events.ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, events.ErrCapacityExceeded):
		return "capacity_exceeded"
	default:
		return "error"
	}
}

// Participants returns summaries of everyone who joined the event.
func (h *EventsHandler) Participants(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	participants, err := h.Events.Participants(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, participants)
}

// eventID validates the path id up front so malformed ids read as 400, not
// as a store miss.
func eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := pathParam(r, "id")
	if err := ids.Validate(id); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return "", false
	}
	return id, true
}
