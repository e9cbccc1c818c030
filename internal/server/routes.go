package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/reactkit/internal/api/v1"
	"github.com/gosuda/reactkit/internal/api/ws"
	rkslack "github.com/gosuda/reactkit/internal/messenger/slack"
)

func registerAPIRoutes(api huma.API, deps Deps) {
	v1.RegisterMenuRoutes(api, deps.Menus)
	v1.RegisterStatusRoutes(api, deps.Events, deps.Menus, deps.Platforms)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/events", hub.ServeEvents)
}

func registerSlackRoutes(r chi.Router, handler *rkslack.Handler) {
	r.Post("/events", handler.HandleEvents)
}
