//go:build !android

package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"pointfall/internal/config"
	"pointfall/internal/economy"
	"pointfall/internal/game"
	"pointfall/internal/logger"
	"pointfall/internal/store"
)

var (
	envFile = flag.String("env", ".env", "env file with POINTFALL_* overrides")
	term    = flag.Bool("term", false, "run in the terminal instead of a window")
	user    = flag.String("user", "", "user whose balance is shown (default from config)")
	dbPath  = flag.String("db", "", "balance database path (default from config)")
	add     = flag.Float64("add", 0, "credit this many points before starting")
	history = flag.Int("history", 0, "print the last N ledger entries and exit")
)

func main() {
	flag.Parse()
	log := logger.Default()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pointfall: %v\n", err)
		os.Exit(2)
	}
	if *user != "" {
		cfg.App.User = *user
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	if *add != 0 || *history > 0 {
		if err := ledger(cfg, *add, *history); err != nil {
			fmt.Fprintf(os.Stderr, "pointfall: %v\n", err)
			os.Exit(1)
		}
		if *history > 0 {
			return
		}
	}

	if *term {
		err = game.RunTerminal(cfg, log)
	} else {
		err = game.RunDesktop(cfg, log)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pointfall: %v\n", err)
		os.Exit(1)
	}
}

// ledger credits amount (when non-zero) and prints up to n recent entries.
func ledger(cfg config.Config, amount float64, n int) error {
	st, err := store.Open(cfg.Store.Path, cfg.Model())
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if amount != 0 {
		var b economy.Balance
		if amount > 0 {
			b, err = st.Add(ctx, cfg.App.User, amount, time.Now())
		} else {
			b, err = st.Subtract(ctx, cfg.App.User, -amount, time.Now())
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s now has %s\n", cfg.App.User, points(b.Points))
	}

	if n <= 0 {
		return nil
	}
	entries, err := st.History(ctx, cfg.App.User, n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%-12s %+10.1f  -> %s  %s\n", e.Kind, e.Delta, points(e.PointsAfter), humanize.Time(e.CreatedAt))
	}
	return nil
}

type points float64

func (p points) String() string {
	return humanize.Comma(int64(math.Round(float64(p)))) + " pts"
}
