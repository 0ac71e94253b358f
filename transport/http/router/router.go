package router

import (
	"clipper/internal/handlers/operator"
	"clipper/internal/handlers/schedule"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Schedule schedule.Handler
	Operator operator.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Schedule.Router(routerGroup)
		r.DomainHandlers.Operator.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
