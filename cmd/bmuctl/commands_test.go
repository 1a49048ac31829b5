package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bmu-faultfinder/internal/catalog"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportYAMLIsLoadedDocument(t *testing.T) {
	out, err := run(t, "export", "--format", "yaml")
	require.NoError(t, err)
	store, err := catalog.Default()
	require.NoError(t, err)
	assert.Equal(t, string(store.Raw()), out)
}

func TestExportJSON(t *testing.T) {
	out, err := run(t, "export")
	require.NoError(t, err)

	var ds map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &ds))
	for _, key := range []string{"models", "subsystems", "symptoms", "components", "safetyNotes", "faultFlows"} {
		assert.Contains(t, ds, key)
	}
}

func TestWriteYAMLReencodesDecodedStore(t *testing.T) {
	store, err := catalog.Default()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeYAML(&out, catalog.New(store.Dataset(), nil)))
	again, err := catalog.Load(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, len(store.FaultFlows()), len(again.FaultFlows()))
	assert.Equal(t, store.Models(), again.Models())
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := run(t, "export", "--format", "xml")
	assert.Error(t, err)
}

func TestValidateEmbedded(t *testing.T) {
	out, err := run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 3 models")
}

func TestResolve(t *testing.T) {
	out, err := run(t, "resolve", "--model", "alimak-a1", "--subsystem", "travel", "--symptom", "trolley-stopped")
	require.NoError(t, err)

	var body struct {
		Flows []struct {
			ID string `json:"id"`
		} `json:"flows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Flows, 1)
	assert.Equal(t, "travel-no-move", body.Flows[0].ID)
}

func TestResolveRequiresSymptom(t *testing.T) {
	_, err := run(t, "resolve", "--subsystem", "travel")
	assert.Error(t, err)
}

func TestWalk(t *testing.T) {
	t.Run("fail on second step", func(t *testing.T) {
		out, err := run(t, "walk", "--flow", "travel-no-move", "--outcomes", "pass,fail")
		require.NoError(t, err)
		assert.Contains(t, out, "Inspect travel limit switches")
		assert.Contains(t, out, "resolved (resolve-limit)")
	})
	t.Run("all pass", func(t *testing.T) {
		out, err := run(t, "walk", "--flow", "travel-no-move")
		require.NoError(t, err)
		assert.Contains(t, out, "terminal")
	})
	t.Run("bad outcome", func(t *testing.T) {
		_, err := run(t, "walk", "--flow", "travel-no-move", "--outcomes", "maybe")
		assert.Error(t, err)
	})
	t.Run("unknown flow", func(t *testing.T) {
		_, err := run(t, "walk", "--flow", "nope")
		assert.Error(t, err)
	})
}
