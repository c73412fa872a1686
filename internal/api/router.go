package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mustafanalbant1/Event-Finder/internal/api/handlers"
	"github.com/mustafanalbant1/Event-Finder/internal/api/middleware"
	"github.com/mustafanalbant1/Event-Finder/internal/auth"
	"github.com/mustafanalbant1/Event-Finder/internal/config"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/events"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
	"github.com/mustafanalbant1/Event-Finder/internal/metrics"
	"github.com/mustafanalbant1/Event-Finder/internal/storage/mongodb"
	"github.com/mustafanalbant1/Event-Finder/internal/uploads"
)

// Dependencies carries everything the router wires together. The caller owns
// the database connection lifecycle.
type Dependencies struct {
	Config  config.Config
	Logger  zerolog.Logger
	Client  *mongo.Client
	DB      *mongo.Database
	Uploads uploads.Store
	Version string
}

func NewRouter(deps Dependencies) http.Handler {
	repo := mongodb.NewRepository(deps.DB)

	userService := users.NewService(repo.Users(), deps.Logger)
	eventService := events.NewService(repo.Events(), repo.Users(), deps.Logger)

	jwtManager := auth.NewJWTManager(
		deps.Config.Auth.JWTSecret,
		deps.Config.Auth.JWTExpiry,
		deps.Config.Auth.JWTIssuer,
	)

	authHandler := handlers.NewAuthHandler(userService, jwtManager)
	usersHandler := handlers.NewUsersHandler(userService, eventService)
	eventsHandler := handlers.NewEventsHandler(eventService, deps.Uploads)
	healthHandler := handlers.NewHealthHandler(deps.Client, deps.Version)

	requireUser := middleware.RequireUser(jwtManager, userService)
	optionalUser := middleware.OptionalUser(jwtManager, userService)
	jsonBody := middleware.JSONRequestSize()

	mux := http.NewServeMux()

	mux.Handle("/healthz", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(healthHandler.Healthz),
	}))
	mux.Handle("/readyz", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(healthHandler.Readyz),
	}))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(deps.Config.Uploads.Dir))))

	mux.Handle("/api/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: jsonBody(http.HandlerFunc(authHandler.Register)),
	}))
	mux.Handle("/api/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: jsonBody(http.HandlerFunc(authHandler.Login)),
	}))

	mux.Handle("/api/users/me", methodMux(map[string]http.Handler{
		http.MethodGet: requireUser(http.HandlerFunc(usersHandler.Me)),
		http.MethodPut: requireUser(jsonBody(http.HandlerFunc(usersHandler.UpdateMe))),
	}))

	// Event creation takes multipart bodies for image upload, so the JSON
	// body cap does not apply; the upload store enforces its own limit.
	mux.Handle("/api/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: requireUser(http.HandlerFunc(eventsHandler.Create)),
	}))
	mux.Handle("/api/events/search", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Search),
	}))
	mux.Handle("/api/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    requireUser(jsonBody(http.HandlerFunc(eventsHandler.Update))),
		http.MethodDelete: requireUser(http.HandlerFunc(eventsHandler.Delete)),
	}))
	mux.Handle("/api/events/{id}/details", methodMux(map[string]http.Handler{
		http.MethodGet: optionalUser(http.HandlerFunc(eventsHandler.Details)),
	}))
	mux.Handle("/api/events/{id}/apply", methodMux(map[string]http.Handler{
		http.MethodPost: requireUser(http.HandlerFunc(eventsHandler.Join)),
	}))
	mux.Handle("/api/events/{id}/participants", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Participants),
	}))

	return chain(mux,
		middleware.CorrelationID(deps.Logger),
		middleware.RequestLogging(),
		metrics.HTTPMiddleware,
		middleware.CORS(deps.Config.CORS, deps.Logger),
	)
}

// chain applies middlewares so the first listed runs outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
