package config

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if err := Initialize(tempDir, log.New(io.Discard)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("HistoryPath", func(t *testing.T) {
		assert.Equal(t, filepath.Join(tempDir, "history"), cfg.HistoryPath())
	})

	t.Run("OpenEventLog disabled", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		assert.Nil(t, fd)

		fd, err = cfg.ReadEventLog()
		assert.Nil(t, err)
		assert.Nil(t, fd)
	})

	t.Run("HistoryPath disabled", func(t *testing.T) {
		cfg := *cfg
		cfg.HistoryFile = ""
		assert.Equal(t, "", cfg.HistoryPath())
	})

	t.Run("OpenEventLog", func(t *testing.T) {
		cfg.EventLog = "events.jsonl"
		fd, err := cfg.OpenEventLog()
		require.Nil(t, err)
		fd.Close()

		assert.FileExists(t, filepath.Join(tempDir, "events.jsonl"))
	})

	t.Run("LoadConfigPath", func(t *testing.T) {
		_, err := Load(filepath.Join(tempDir, ConfigurationName))
		assert.Nil(t, err)
	})
}

func TestInitializeKeepsExisting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/cfg/config.yaml", []byte("color: never\n"), 0600))

	require.NoError(t, InitializeFs(fsys, "/cfg", log.New(io.Discard)))

	contents, err := afero.ReadFile(fsys, "/cfg/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "color: never\n", string(contents))
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/cfg/config.yaml", []byte("ssh_port: 22\n"), 0600))

	_, err := LoadFs(fsys, "/cfg")
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	fsys := afero.NewMemMapFs()
	config := "color: auto\njob_control: auto\nlog_level: warn\nhistory_limit: -5\n"
	require.NoError(t, afero.WriteFile(fsys, "/cfg/config.yaml", []byte(config), 0600))

	_, err := LoadFs(fsys, "/cfg")
	assert.Error(t, err)
}
