package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/store"
)

func validSettings(dir string) Settings {
	return Settings{
		DataDir:        dir,
		LogLevel:       "warn",
		MaxFolderDepth: 2,
		FilenameFormat: models.FilenameFormatTitle,
		SearchEnabled:  true,
		Store:          store.Config{Backend: store.BackendFile, DataDir: dir},
	}
}

func TestSettingsValidate(t *testing.T) {
	s := validSettings(t.TempDir())
	require.NoError(t, s.Validate())

	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"missing data dir", func(s *Settings) { s.DataDir = "" }},
		{"negative depth", func(s *Settings) { s.MaxFolderDepth = -1 }},
		{"bad filename format", func(s *Settings) { s.FilenameFormat = "slug" }},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := validSettings(t.TempDir())
			tt.modify(&bad)
			assert.Error(t, bad.Validate())
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NOTES_DATA_DIR", filepath.Join(home, "notes"))
	t.Setenv("NOTES_MAX_FOLDER_DEPTH", "3")
	t.Setenv("NOTES_FILENAME_FORMAT", "date-title")
	t.Setenv("NOTES_STORE_BACKEND", "sqlite")

	InitConfig()
	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), s.DataDir)
	assert.Equal(t, 3, s.MaxFolderDepth)
	assert.Equal(t, models.FilenameFormatDateTitle, s.FilenameFormat)
	assert.Equal(t, store.BackendSQLite, s.Store.Backend)
	assert.Equal(t, s.DataDir, s.Store.DataDir)
}

func TestOpenAndClose(t *testing.T) {
	s := validSettings(t.TempDir())
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	ctx := context.Background()
	app, err := Open(ctx, &s, logger)
	require.NoError(t, err)

	_, err = app.Service.AddNote("", "Hello", "")
	require.NoError(t, err)
	require.NoError(t, app.Close(ctx))

	again, err := Open(ctx, &s, logger)
	require.NoError(t, err)
	defer again.Close(ctx)
	require.Len(t, again.Service.Snapshot(), 1)
	assert.Equal(t, "Hello", again.Service.Snapshot()[0].Title)
}
