package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mustafanalbant1/Event-Finder/internal/api/respond"
	"github.com/mustafanalbant1/Event-Finder/internal/auth"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
	"github.com/mustafanalbant1/Event-Finder/internal/metrics"
)

type AuthHandler struct {
	Users *users.Service
	JWT   *auth.JWTManager
}

func NewAuthHandler(service *users.Service, jwt *auth.JWTManager) *AuthHandler {
	return &AuthHandler{Users: service, JWT: jwt}
}

// userPayload is the client-facing user shape. The password hash never
// leaves the server.
type userPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func toUserPayload(u users.User) userPayload {
	return userPayload{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input users.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBodyError(w, r, err)
		return
	}

	user, err := h.Users.Register(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := h.JWT.Generate(user.ID)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	metrics.UserRegistrationsTotal.Inc()
	respond.JSON(w, http.StatusCreated, sessionResponse{Token: token, User: toUserPayload(user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBodyError(w, r, err)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		writeDomainError(w, r, err)
		return
	}

	token, err := h.JWT.Generate(user.ID)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	respond.JSON(w, http.StatusOK, sessionResponse{Token: token, User: toUserPayload(user)})
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	if respond.IsBodyTooLarge(err) {
		respond.Error(w, r, http.StatusRequestEntityTooLarge, "request body too large", err)
		return
	}
	respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
}
