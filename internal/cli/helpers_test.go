package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalYAML is a clean four-node flow document.
const minimalYAML = `process: order-fulfillment
nodes:
  - id: start
    kind: start-event
    name: Start
  - id: review
    kind: task
    name: Review order
  - id: ship
    kind: task
    name: Ship
  - id: done
    kind: end-event
    name: Done
edges:
  - from: start
    to: review
  - from: review
    to: ship
  - from: ship
    to: done
`

// brokenYAML has an edge pointing at a node that does not exist.
const brokenYAML = `process: broken
nodes:
  - id: start
    kind: start-event
  - id: task1
    kind: task
edges:
  - from: start
    to: task1
  - from: task1
    to: ghost
`

// writeTestDoc writes content into a temp file and returns its path.
func writeTestDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and collects stdout.
// HOME is pointed at a temp dir so no real user config leaks in.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// executeWithStdin runs the root command with stdin wired to input.
func executeWithStdin(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewBufferString(input))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}
