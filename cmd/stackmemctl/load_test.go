package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maskerad/stackmem/internal/testutil"
)

func TestLoadCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		level       bool
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "image and sound into global",
			args:        []string{testutil.FontImage, testutil.ClickSound},
			wantContain: []string{"ui/font.png", "8x4 rgba", "16 frames @ 22050 Hz", "global", "REGION"},
		},
		{
			name:        "model into level",
			args:        []string{testutil.TreeModel},
			level:       true,
			wantContain: []string{"forest/tree.gltf", "2 buffers", "level"},
		},
		{
			name:        "json output",
			args:        []string{testutil.BarkImage},
			json:        true,
			wantContain: []string{`"path": "forest/bark.png"`, `"kind": "image"`, `"size": 64`},
		},
		{
			name:    "missing file",
			args:    []string{"ui/missing.png"},
			wantErr: true,
		},
		{
			name:    "unsupported extension",
			args:    []string{testutil.UnknownFile},
			wantErr: true,
		},
	}

	root := writeAssets(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			assetRoot = root
			loadLevel = tt.level
			jsonOut = tt.json

			output, err := captureOutput(t, func() error {
				return runLoad(tt.args)
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err, "output: %s", output)
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestLoadCommand_OutOfMemory(t *testing.T) {
	resetFlags()
	assetRoot = writeAssets(t)
	configPath = writeConfig(t, "[memory]\nglobal = 64B\n")

	_, err := captureOutput(t, func() error {
		return runLoad([]string{testutil.FontImage})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestLoadCommand_Quiet(t *testing.T) {
	resetFlags()
	assetRoot = writeAssets(t)
	quiet = true

	output, err := captureOutput(t, func() error {
		return runLoad([]string{testutil.FontImage})
	})
	require.NoError(t, err)
	assert.Empty(t, output)
}

func TestLoadCommand_ReportsActualScope(t *testing.T) {
	resetFlags()
	assetRoot = writeAssets(t)
	configPath = writeConfig(t, "[resources]\nglobal = "+testutil.FontImage+"\n")
	loadLevel = true
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runLoad([]string{testutil.FontImage, testutil.BarkImage})
	})
	require.NoError(t, err, "output: %s", output)

	resources, ok := assertJSON(t, output)["resources"].([]any)
	require.True(t, ok)
	require.Len(t, resources, 2)
	scopes := map[string]string{}
	for _, r := range resources {
		info := r.(map[string]any)
		scopes[info["path"].(string)] = info["scope"].(string)
	}
	assert.Equal(t, "global", scopes[testutil.FontImage], "already global when requested at level scope")
	assert.Equal(t, "level", scopes[testutil.BarkImage])
}
