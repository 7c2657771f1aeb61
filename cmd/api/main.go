package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"csdept/internal/app"
	"csdept/internal/config"
	"csdept/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Log)

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("init app")
	}
	defer a.Close()

	if err := a.Migrate(); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	log.WithFields(logrus.Fields{
		"addr": cfg.HTTPAddr,
		"env":  cfg.AppEnv,
	}).Info("listening")
	if err := a.Router().Run(cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
