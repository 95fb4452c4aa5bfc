//go:build !android

package game

import (
	"pointfall/internal/config"
	"pointfall/internal/store"
)

func openSource(cfg config.Config) (balanceCloser, error) {
	return store.Open(cfg.Store.Path, cfg.Model())
}
