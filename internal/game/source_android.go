//go:build android

package game

import (
	"errors"

	"pointfall/internal/config"
)

// Balances on device come from the host app; there is no local store.
func openSource(config.Config) (balanceCloser, error) {
	return nil, errors.New("no local store on android")
}
