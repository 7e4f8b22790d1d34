// Package httpapi exposes the maintenance services over JSON HTTP.
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
	"poolkeeper/internal/usecase/alerts"
	"poolkeeper/internal/usecase/inventory"
	"poolkeeper/internal/usecase/readings"
	"poolkeeper/internal/usecase/tasks"
	"poolkeeper/internal/usecase/users"
)

type Deps struct {
	Tasks     *tasks.Service
	Alerts    *alerts.Service
	Inventory *inventory.Service
	Readings  *readings.Service
	Users     *users.Service

	DB   ports.Pinger
	Meta ports.MetaStore

	DefaultUserEmail string
}

type api struct {
	Deps
}

// NewRouter builds the handler tree. base supplies the logger used for request logs.
func NewRouter(base context.Context, deps Deps) http.Handler {
	a := &api{Deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(base))
	r.Use(middleware.Recoverer)

	r.Get("/health", a.health)
	r.Get("/readyz", a.ready)

	r.Group(func(r chi.Router) {
		r.Use(withOwner(deps.Users, deps.DefaultUserEmail))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", a.listTasks)
			r.Post("/", a.createTask)
			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", a.getTask)
				r.Put("/", a.updateTask)
				r.Delete("/", a.deleteTask)
				r.Post("/complete", a.completeTask)
				r.Get("/history", a.taskHistory)
			})
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", a.listAlerts)
			r.Post("/", a.createAlert)
			r.Get("/{alertID}", a.getAlert)
			r.Put("/{alertID}", a.updateAlert)
			r.Delete("/{alertID}", a.deleteAlert)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", a.listInventory)
			r.Post("/", a.createInventory)
			r.Get("/{itemID}", a.getInventory)
			r.Put("/{itemID}", a.updateInventory)
			r.Delete("/{itemID}", a.deleteInventory)
		})

		r.Route("/readings", func(r chi.Router) {
			r.Get("/types", a.listReadingTypes)
			r.Post("/types", a.createReadingType)
			r.Get("/", a.listReadings)
			r.Post("/", a.createReading)
			r.Delete("/{readingID}", a.deleteReading)
		})
	})

	return r
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.Invalid("invalid %s %q", name, raw)
	}
	return id, nil
}

// intQuery returns fallback when the parameter is absent.
func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.Invalid("%s must be an integer", name)
	}
	return v, nil
}
