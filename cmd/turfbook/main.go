package main

import (
	"turfbook/internal/api"
	"turfbook/pkg/app"
	"turfbook/pkg/config"
)

const ServiceName = "turfbook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStorage()
	cfg.SetRedis()
	cfg.SetProducer()

	cfg.Log.Info("Starting turfbook API", "storage_driver", cfg.StorageDriver)
	turfbookAPI, err := api.New(cfg)
	if err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Failed to wire API", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(turfbookAPI.Health, turfbookAPI.Handlers...)
	serverApp.OnShutdown(turfbookAPI.Close)
	serverApp.Run()
}
