package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "pir", cmd.Use)
	assert.Contains(t, cmd.Long, "intermediate representation")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "convert", "inspect", "hash", "save", "list", "show"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
}

func TestValidateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	validateCmd, _, err := cmd.Find([]string{"validate"})
	require.NoError(t, err)

	notationFlag := validateCmd.Flags().Lookup("notation")
	require.NotNil(t, notationFlag)
	assert.Equal(t, "", notationFlag.DefValue)

	strictFlag := validateCmd.Flags().Lookup("strict")
	require.NotNil(t, strictFlag)
	assert.Equal(t, "false", strictFlag.DefValue)
}

func TestConvertCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	convertCmd, _, err := cmd.Find([]string{"convert"})
	require.NoError(t, err)

	toFlag := convertCmd.Flags().Lookup("to")
	require.NotNil(t, toFlag)

	notationFlag := convertCmd.Flags().Lookup("notation")
	require.NotNil(t, notationFlag)
}

func TestArchiveCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"save", "list", "show"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			dbFlag := subCmd.Flags().Lookup("db")
			require.NotNil(t, dbFlag)
			// --db falls back to config, so the flag default is empty
			assert.Equal(t, "", dbFlag.DefValue)
		})
	}
}

func TestShowCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	showCmd, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)

	repFlag := showCmd.Flags().Lookup("representation")
	require.NotNil(t, repFlag)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "invalid", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigFileSetsFormat(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	err := os.WriteFile(filepath.Join(home, ".pir.yaml"), []byte("format: json\n"), 0644)
	require.NoError(t, err)

	doc := filepath.Join(t.TempDir(), "order.yaml")
	require.NoError(t, os.WriteFile(doc, []byte(minimalYAML), 0644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"hash", doc})

	require.NoError(t, cmd.Execute())

	// Config switched the default format to JSON
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestConfigFlagBeatsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	err := os.WriteFile(filepath.Join(home, ".pir.yaml"), []byte("format: json\n"), 0644)
	require.NoError(t, err)

	doc := filepath.Join(t.TempDir(), "order.yaml")
	require.NoError(t, os.WriteFile(doc, []byte(minimalYAML), 0644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--format", "text", "hash", doc})

	require.NoError(t, cmd.Execute())

	// Explicit flag wins: bare hash, not a JSON envelope
	assert.NotContains(t, buf.String(), `"status"`)
	assert.Len(t, strings.TrimSpace(buf.String()), 64)
}

func TestEnvSetsFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PIR_FORMAT", "json")

	doc := filepath.Join(t.TempDir(), "order.yaml")
	require.NoError(t, os.WriteFile(doc, []byte(minimalYAML), 0644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"hash", doc})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestExplicitConfigFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", "/nonexistent/pir.yaml", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}
