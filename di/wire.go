//go:build wireinject
// +build wireinject

package di

import (
	"clipper/config"
	"clipper/infras/jwt"
	"clipper/infras/kafka"
	"clipper/infras/otel"
	"clipper/infras/postgres"
	"clipper/infras/redis"
	"clipper/permissions"
	"clipper/shared/cache"
	"clipper/transport/http"
	"clipper/transport/http/middleware"
	"clipper/transport/http/router"

	operatorService "clipper/internal/domains/operator/service"
	scheduleRepository "clipper/internal/domains/schedule/repository"
	scheduleService "clipper/internal/domains/schedule/service"
	operatorHandler "clipper/internal/handlers/operator"
	scheduleHandler "clipper/internal/handlers/schedule"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	permissions.Get,
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
	wire.Bind(new(middleware.SessionRevoker), new(operatorService.Operator)),
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var scheduleDomain = wire.NewSet(
	scheduleRepository.New,
	scheduleService.New,
)

var operatorDomain = wire.NewSet(
	operatorService.New,
)

var domains = wire.NewSet(
	scheduleDomain,
	operatorDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	scheduleHandler.New,
	operatorHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
