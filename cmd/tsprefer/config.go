package main

import (
	"path/filepath"

	"github.com/tsgonest/tsprefer/internal/config"
	"go.uber.org/zap"
)

// ConfigResult holds the result of loading a tsprefer config file.
type ConfigResult struct {
	Config *config.Config
	Path   string // resolved absolute path to config file (empty if none found)
	Dir    string // directory containing the config file (defaults to cwd)
}

// loadOrDiscoverConfig loads a tsprefer config from the given path, or
// auto-discovers one in the working directory if configPath is empty. With
// no config file the defaults apply. Validation warnings are logged.
func loadOrDiscoverConfig(configPath, cwd string, logger *zap.Logger) (*ConfigResult, error) {
	result := &ConfigResult{Dir: cwd}

	if configPath == "" {
		configPath = config.Discover(cwd)
	}
	if configPath == "" {
		cfg := config.DefaultConfig()
		result.Config = &cfg
		return result, nil
	}

	resolved := configPath
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(cwd, resolved)
	}
	cfg, err := config.Load(resolved)
	if err != nil {
		return nil, err
	}
	for _, warning := range cfg.ValidateDetailed().Warnings {
		logger.Warn("Config warning", zap.String("path", resolved), zap.String("warning", warning))
	}
	result.Config = cfg
	result.Path = resolved
	result.Dir = filepath.Dir(resolved)
	return result, nil
}
