package config

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Initialize writes the default configuration into dir, leaving an existing
// configuration untouched.
func Initialize(dir string, logger *log.Logger) error {
	return InitializeFs(afero.NewOsFs(), dir, logger)
}

// InitializeFs is Initialize on an arbitrary filesystem.
func InitializeFs(fsys afero.Fs, dir string, logger *log.Logger) error {
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("couldn't create config dir: %w", err)
	}

	configPath := filepath.Join(dir, ConfigurationName)
	exists, err := afero.Exists(fsys, configPath)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("configuration exists, skipping", "path", configPath)
		return nil
	}

	logger.Info("writing default configuration", "path", configPath)
	return afero.WriteFile(fsys, configPath, defaultConfigData, 0600)
}
