package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashDocument(t *testing.T) {
	doc := writeTestDoc(t, "order.yaml", minimalYAML)

	out, err := execute(t, "hash", doc)
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.Len(t, hash, 64)
	assert.NotContains(t, hash, " ")
}

func TestHashStable(t *testing.T) {
	doc := writeTestDoc(t, "order.yaml", minimalYAML)

	first, err := execute(t, "hash", doc)
	require.NoError(t, err)
	second, err := execute(t, "hash", doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHashDiffersForDifferentContent(t *testing.T) {
	a := writeTestDoc(t, "a.yaml", minimalYAML)
	b := writeTestDoc(t, "b.yaml", brokenYAML)

	hashA, err := execute(t, "hash", a)
	require.NoError(t, err)
	hashB, err := execute(t, "hash", b)
	require.NoError(t, err)

	assert.NotEqual(t, hashA, hashB)
}

func TestHashJSON(t *testing.T) {
	doc := writeTestDoc(t, "order.yaml", minimalYAML)

	out, err := execute(t, "--format", "json", "hash", doc)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, marshalErr := json.Marshal(resp.Data)
	require.NoError(t, marshalErr)
	var result HashResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Hash, 64)
	assert.Contains(t, result.File, "order.yaml")
}

func TestHashStdin(t *testing.T) {
	out, err := executeWithStdin(t, minimalYAML, "hash", "-")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 64)
}
