package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"bpmn", "flowcue", "flowhcl", "flowyaml"}, r.Names())

	for _, name := range r.Names() {
		a, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.Name())
	}
}

func TestDefaultDetectAcrossNotations(t *testing.T) {
	r := Default()

	cases := []struct {
		filename string
		src      string
		want     string
	}{
		{"order.bpmn", "", "bpmn"},
		{"order.cue", "", "flowcue"},
		{"order.hcl", "", "flowhcl"},
		{"order.yaml", "", "flowyaml"},
		{"order", `<definitions xmlns="http://www.omg.org/spec/BPMN/20100524/MODEL"/>`, "bpmn"},
		{"order", "node \"a\" {\n  kind = \"task\"\n}\n", "flowhcl"},
	}
	for _, tc := range cases {
		a, err := r.Detect(tc.filename, []byte(tc.src))
		require.NoError(t, err, tc.filename)
		assert.Equal(t, tc.want, a.Name(), tc.filename)
	}
}

func TestDefaultDetectUnknown(t *testing.T) {
	r := Default()
	_, err := r.Detect("notes.txt", []byte("just some text"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot detect notation")
}
