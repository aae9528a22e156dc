// Package main runs the interactive duel client in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/content"
	"github.com/cory-johannsen/entities/internal/frontend/console"
	"github.com/cory-johannsen/entities/internal/game/ai"
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/dice"
	"github.com/cory-johannsen/entities/internal/game/match"
	"github.com/cory-johannsen/entities/internal/game/ruleset"
	"github.com/cory-johannsen/entities/internal/game/status"
	"github.com/cory-johannsen/entities/internal/observability"
	"github.com/cory-johannsen/entities/internal/scripting"
	"github.com/cory-johannsen/entities/internal/server"
	"github.com/cory-johannsen/entities/internal/storage/postgres"
)

const (
	menuPlay = 1
	menuExit = 2
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	playerName := flag.String("player", "Player", "name shown for the human side")
	enemyName := flag.String("enemy", "Enemy", "name shown for the AI side")
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

	src := dice.SourceFor(cfg.Match.Seed)
	roller := dice.NewLoggedRoller(src, logger)

	statuses := status.DefaultRegistry()
	if cfg.Content.StatusesDir != "" {
		statuses, err = status.LoadDirectory(cfg.Content.StatusesDir)
		if err != nil {
			logger.Fatal("loading statuses", zap.Error(err))
		}
	}
	gen, err := combat.NewGenerator(cfg.Moves, statuses, roller)
	if err != nil {
		logger.Fatal("building move generator", zap.Error(err))
	}

	scripts := scripting.NewManager(roller, logger, cfg.Content.ScriptInstructionLimit)
	defer scripts.Close()
	library, err := content.Open(cfg.Content.DatapacksDir, scripts, src, logger)
	if err != nil {
		logger.Fatal("loading datapacks", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("statuses", statuses.Len()),
		zap.Int("datapacks", len(library.Packs())),
		zap.Strings("scripts", scripts.Keys()),
	)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	var repo *postgres.MatchRepository
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		repo = postgres.NewMatchRepository(pool.DB())
		lifecycle.Add("postgres", &server.FuncService{
			RunFn: func(ctx context.Context) error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: pool.Close,
		})
	}

	term := console.NewTerminal(os.Stdin, os.Stdout)
	renderer := console.NewRenderer(os.Stdout, cfg.Display, library)
	app := &client{
		cfg:      cfg,
		src:      src,
		gen:      gen,
		term:     term,
		renderer: renderer,
		library:  library,
		repo:     repo,
		logger:   logger,
		player:   *playerName,
		enemy:    *enemyName,
	}
	lifecycle.Add("console", &server.FuncService{
		RunFn:  app.run,
		StopFn: term.Restore,
	})

	logger.Info("client initialized", zap.Duration("startup", time.Since(start)))
	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("client error", zap.Error(err))
	}
}

type client struct {
	cfg      config.Config
	src      dice.Source
	gen      *combat.Generator
	term     *console.Terminal
	renderer *console.Renderer
	library  *content.Library
	repo     *postgres.MatchRepository
	logger   *zap.Logger
	player   string
	enemy    string
}

// run shows the main menu until the user exits or input ends.
func (c *client) run(ctx context.Context) error {
	defer c.renderer.Goodbye()
	for ctx.Err() == nil {
		c.renderer.MainMenu(c.library.Packs(), c.tally(ctx))
		choice, err := c.term.ReadMenu()
		if err != nil {
			return ignoreEOF(err)
		}
		switch choice {
		case menuPlay:
			if err := c.play(ctx); err != nil {
				return ignoreEOF(err)
			}
		case menuExit:
			return nil
		}
	}
	return nil
}

func (c *client) play(ctx context.Context) error {
	c.renderer.DifficultyMenu()
	var mode ruleset.Mode
	for {
		n, err := c.term.ReadMenu()
		if err != nil {
			return err
		}
		if mode, err = ruleset.ParseMode(n); err == nil {
			break
		}
		c.renderer.Notice("Pick 1 to 4.")
	}

	decider := ai.NewDecider(c.src)
	deps := match.Deps{
		Config:    c.cfg.Match,
		Generator: c.gen,
		Setup: func() (ruleset.Setup, error) {
			return ruleset.NewSetup(mode, c.cfg.Match, c.src)
		},
		Player:     match.NewHumanChooser(c.term, c.renderer),
		Enemy:      match.NewAIChooser(decider, c.renderer),
		Presenter:  c.renderer,
		Logger:     c.logger,
		PlayerName: c.player,
		EnemyName:  c.enemy,
	}
	if c.repo != nil {
		deps.History = c.repo
	}
	ctrl, err := match.New(deps)
	if err != nil {
		return err
	}
	_, err = ctrl.Play(ctx, c.term)
	return err
}

func (c *client) tally(ctx context.Context) *match.Tally {
	if c.repo == nil {
		return nil
	}
	t, err := c.repo.Tally(ctx)
	if err != nil {
		c.logger.Warn("reading match tally", zap.Error(err))
		return nil
	}
	return &t
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
