package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mustafanalbant1/Event-Finder/internal/api/respond"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	client  *mongo.Client
	version string
}

func NewHealthHandler(client *mongo.Client, version string) *HealthHandler {
	return &HealthHandler{client: client, version: version}
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Healthz reports process liveness. It never touches dependencies.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether the server can do useful work: the database must
// answer a ping within the probe deadline.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.client == nil {
		respond.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
		respond.Error(w, r, http.StatusServiceUnavailable, "database unreachable", err)
		return
	}

	respond.JSON(w, http.StatusOK, healthResponse{
		Status:    "ready",
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
