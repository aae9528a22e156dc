// Package main plays batches of AI-vs-AI duels at every difficulty scale and
// reports how the tuned enemy fares against a fixed baseline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/game/ai"
	"github.com/cory-johannsen/entities/internal/game/match"
	"github.com/cory-johannsen/entities/internal/game/status"
	"github.com/cory-johannsen/entities/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	games := flag.Int("games", 500, "matches per scale")
	baseline := flag.Int("baseline", 2, "scale of the player-side AI")
	maxRounds := flag.Int("max-rounds", 200, "rounds before a match is called a draw")
	seed := flag.Int64("seed", 1, "seed of the first match; scale s uses seed+s*games")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	statuses := status.DefaultRegistry()
	if cfg.Content.StatusesDir != "" {
		if statuses, err = status.LoadDirectory(cfg.Content.StatusesDir); err != nil {
			logger.Fatal("loading statuses", zap.Error(err))
		}
	}

	reports := make([]match.SimReport, ai.MaxScale+1)
	g, ctx := errgroup.WithContext(context.Background())
	for scale := 0; scale <= ai.MaxScale; scale++ {
		scale := scale
		g.Go(func() error {
			rep, err := match.Simulate(ctx, match.SimConfig{
				Match:       cfg.Match,
				Moves:       cfg.Moves,
				Statuses:    statuses,
				Games:       *games,
				EnemyScale:  scale,
				PlayerScale: *baseline,
				MaxRounds:   *maxRounds,
				Seed:        *seed + int64(scale**games),
			}, logger.With(zap.Int("scale", scale)))
			if err != nil {
				return fmt.Errorf("scale %d: %w", scale, err)
			}
			reports[scale] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "scale\tgames\twins\tlosses\tdraws\twin rate\thealth diff\n")
	for _, r := range reports {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%.3f\t%+.2f\n",
			r.Scale, r.Games, r.Wins, r.Losses, r.Draws, r.WinRate(), r.HealthDiff)
	}
	_ = w.Flush()

	logger.Info("simulation complete",
		zap.Int("games_per_scale", *games),
		zap.Int("baseline", *baseline),
		zap.Duration("elapsed", time.Since(start)),
	)
}
