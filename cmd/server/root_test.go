package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate"}, names)
}

func TestMigrate_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vessel.db")
	t.Setenv("CONNECTION_STRING", "sqlite:///"+dbPath)
	t.Setenv("LOGGER_FORMAT", "text")

	for i := 0; i < 2; i++ {
		root := newRootCmd()
		root.SetArgs([]string{"migrate"})
		require.NoError(t, root.Execute())
	}
	assert.FileExists(t, dbPath)

	root := newRootCmd()
	root.SetArgs([]string{"migrate", "down"})
	assert.Error(t, root.Execute())
}

func TestMigrate_InvalidConfig(t *testing.T) {
	t.Setenv("CONNECTION_STRING", "mysql://nope")

	root := newRootCmd()
	root.SetArgs([]string{"migrate"})
	assert.Error(t, root.Execute())
}
