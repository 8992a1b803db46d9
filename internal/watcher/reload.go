package watcher

import (
	"go.uber.org/zap"

	"github.com/hyperjump/snfront/internal/config"
	"github.com/hyperjump/snfront/internal/sites"
)

// ReloadSites returns an onChange callback that reloads the config at path and swaps the
// registry's sites. A config that fails to load or validate leaves the registry untouched.
func ReloadSites(registry *sites.Registry, logger *zap.Logger) func(path string) {
	return func(path string) {
		cfg, err := config.Load(path)
		if err != nil {
			logger.Warn("config reload failed; keeping current sites", zap.String("path", path), zap.Error(err))
			return
		}
		registry.Replace(cfg.Sites)
		logger.Info("config reloaded", zap.String("path", path), zap.Int("sites", len(cfg.Sites)))
	}
}
