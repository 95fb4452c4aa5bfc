//go:build android

package main

import (
	"pointfall/internal/config"
	"pointfall/internal/game"
	"pointfall/internal/logger"
)

func main() {
	log := logger.Default()
	cfg, err := config.Load()
	if err != nil {
		log.Errorf("config: %v (using defaults)", err)
		cfg = config.Default()
	}
	game.RunAndroid(cfg, log)
}
