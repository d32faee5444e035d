package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maskerad/stackmem/internal/testutil"
	"github.com/maskerad/stackmem/vfs"
)

func TestParse_ResourcesAndEntities(t *testing.T) {
	d, err := Parse(testutil.AssetFS(t)[testutil.ForestLevel].Data)
	require.NoError(t, err)

	assert.Equal(t, "forest", d.Name)
	assert.Equal(t, 2, d.Entities())
	assert.Equal(t, []string{
		testutil.BarkImage,
		testutil.FontImage,
		testutil.TreeModel,
		testutil.BirdSound,
	}, d.Needed(), "bark is listed twice but needed once")
}

func TestParse_Minimal(t *testing.T) {
	d, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, d.Name)
	assert.Empty(t, d.Needed())
	assert.Zero(t, d.Entities())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"name": "x",`},
		{"not object", `["a.png"]`},
		{"resources not array", `{"resources": "a.png"}`},
		{"resource not string", `{"resources": ["a.png", 3]}`},
		{"entities not array", `{"entities": {}}`},
		{"model not string", `{"entities": [{"model": ["a.gltf"]}]}`},
		{"sounds not array", `{"entities": [{"sounds": "a.wav"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidDescription)
		})
	}
}

func TestNeeded_ReturnsCopy(t *testing.T) {
	d := New("cave", testutil.RockModel, testutil.DripSound, testutil.RockModel)
	needed := d.Needed()
	require.Equal(t, []string{testutil.RockModel, testutil.DripSound}, needed)

	needed[0] = "mutated"
	assert.Equal(t, testutil.RockModel, d.Needed()[0])
}

func TestLoad(t *testing.T) {
	fsys := vfs.FromFS(testutil.AssetFS(t))

	d, err := Load(fsys, testutil.CaveLevel)
	require.NoError(t, err)
	assert.Equal(t, "cave", d.Name)
	assert.Equal(t, []string{testutil.RockModel, testutil.DripSound}, d.Needed())

	_, err = Load(fsys, "levels/missing.json")
	require.ErrorIs(t, err, vfs.ErrNotExist)

	_, err = Load(fsys, testutil.UnknownFile)
	require.ErrorIs(t, err, ErrInvalidDescription)
}
