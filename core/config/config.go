package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
)

// Values accepted by the enumerated settings.
const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"

	JobControlAuto = "auto"
	JobControlOn   = "on"
	JobControlOff  = "off"
)

type Configuration struct {
	configFs         afero.Fs
	configurationDir string

	Prompt       string `json:"prompt"`
	Color        string `json:"color" validate:"oneof=always auto never"`
	JobControl   string `json:"job_control" validate:"oneof=auto on off"`
	HistoryFile  string `json:"history_file"`
	HistoryLimit int    `json:"history_limit" validate:"gte=0"`
	LogLevel     string `json:"log_level" validate:"oneof=debug info warn error"`
	EventLog     string `json:"event_log"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewOsFs()
	}
	return c.configFs
}

// resolve makes relative paths relative to the configuration directory.
func (c *Configuration) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) || c.configurationDir == "" {
		return name
	}
	return filepath.Join(c.configurationDir, name)
}

// Dir returns the directory the configuration was loaded from, empty for the
// built-in defaults.
func (c *Configuration) Dir() string {
	return c.configurationDir
}

// HistoryPath returns the readline history file or "" if history isn't
// persisted. The built-in defaults never persist history.
func (c *Configuration) HistoryPath() string {
	if c.HistoryFile == "" || (c.configurationDir == "" && !filepath.IsAbs(c.HistoryFile)) {
		return ""
	}
	return c.resolve(c.HistoryFile)
}

// OpenEventLog opens the event log in an append only state. It returns nil
// with no error when event logging is disabled.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, nil
	}
	return c.fs().OpenFile(c.resolve(c.EventLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading. Like OpenEventLog it returns
// nil when event logging is disabled.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, nil
	}
	return c.fs().OpenFile(c.resolve(c.EventLog), os.O_RDONLY, 0600)
}

// Default returns the built-in configuration.
func Default() *Configuration {
	return defaultConfig()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
