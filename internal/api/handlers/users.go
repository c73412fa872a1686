package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mustafanalbant1/Event-Finder/internal/api/middleware"
	"github.com/mustafanalbant1/Event-Finder/internal/api/respond"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/events"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
)

type UsersHandler struct {
	Users  *users.Service
	Events *events.Service
}

func NewUsersHandler(userService *users.Service, eventService *events.Service) *UsersHandler {
	return &UsersHandler{Users: userService, Events: eventService}
}

type profileResponse struct {
	User          userPayload    `json:"user"`
	CreatedEvents []events.Event `json:"createdEvents"`
	JoinedEvents  []events.Event `json:"joinedEvents"`
}

// Me returns the acting user's profile with the events they organize and the
// ones they joined.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	mine, err := h.Events.GetMine(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, profileResponse{
		User:          toUserPayload(user),
		CreatedEvents: mine.Created,
		JoinedEvents:  mine.Joined,
	})
}

// UpdateMe applies a partial profile update to the acting user.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var input users.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBodyError(w, r, err)
		return
	}

	updated, err := h.Users.UpdateProfile(r.Context(), user.ID, input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toUserPayload(updated))
}
