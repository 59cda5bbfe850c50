package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"syncline/internal/config"
	"syncline/internal/logging"
	"syncline/internal/stats"
	"syncline/internal/syncer"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			OutputPaths: []string{
				"stderr",
				filepath.Join(cfg.Paths.LogDir, "syncline.log"),
			},
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// withEngine builds a sync engine wired to the configured journal and
// hands it to fn. The journal is closed when fn returns.
func (c *commandContext) withEngine(fn func(*syncer.Engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	var journal *stats.Store
	if cfg.Stats.Enabled {
		journal, err = c.openJournal()
		if err != nil {
			// A busy or broken journal must not block alignment work.
			if errors.Is(err, stats.ErrLocked) {
				logger.Warn("stats journal locked by another instance, continuing without it")
			} else {
				logger.Warn("stats journal unavailable, continuing without it", logging.Error(err))
			}
			journal = nil
		}
	}
	if journal != nil {
		defer journal.Close()
	}

	engine := syncer.New(syncer.Options{
		Logger:        logger,
		Journal:       journal,
		MaxConcurrent: cfg.Batch.MaxConcurrent,
	})
	return fn(engine)
}

func (c *commandContext) openJournal() (*stats.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := stats.Open(cfg.Paths.StatsDir)
	if err != nil {
		return nil, fmt.Errorf("open stats journal: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
