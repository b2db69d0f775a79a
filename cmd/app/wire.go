//go:build wireinject
// +build wireinject

package main

import (
	"academy/config"
	"academy/internal/command"
	"academy/internal/cron"
	"academy/internal/database"
	"academy/internal/handler"
	"academy/internal/middleware"
	"academy/internal/router"
	"academy/internal/service"
	"academy/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			telemetry.ProviderSet,
			database.ProviderSet,
			service.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			newObservers,
			newHttpServer,
			newApp,
		),
	)
}

// wireCommand init application.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(wire.Build(
		telemetry.ProviderSet,
		database.ProviderSet,
		newCommandObservers,
		command.ProviderSet,
	))
}
