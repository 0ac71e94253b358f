package main

import (
	"clipper/config"
	"clipper/di"
	"clipper/shared/logger"
)

// @title Clipper Scheduling API
// @version 1.0
// @description Appointment scheduling service for a single-chair barbershop.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
