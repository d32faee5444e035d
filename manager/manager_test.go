package manager

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maskerad/stackmem/alloc"
	"github.com/maskerad/stackmem/internal/testutil"
	"github.com/maskerad/stackmem/level"
	"github.com/maskerad/stackmem/resource"
	"github.com/maskerad/stackmem/vfs"
)

var testCaps = alloc.Capacities{
	Global:     4096,
	GlobalCopy: 4096,
	Level:      4096,
	LevelCopy:  4096,
}

func newTestManager(t *testing.T, caps alloc.Capacities) *Manager {
	t.Helper()
	m, err := New(vfs.FromFS(testutil.AssetFS(t)), Options{Capacities: caps})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func globals() []string {
	return []string{testutil.FontImage, testutil.ClickSound}
}

func TestLoadGlobalResources(t *testing.T) {
	m := newTestManager(t, testCaps)

	require.NoError(t, m.LoadGlobalResources(globals()))

	assert.Equal(t, []string{testutil.ClickSound, testutil.FontImage}, m.GlobalResources().Paths())
	assert.True(t, m.LevelResources().IsEmpty())

	font, ok := m.Get(testutil.FontImage)
	require.True(t, ok)
	assert.Equal(t, resource.KindImage, font.Kind)
	assert.Equal(t, testutil.FontImage, font.Path)
	assert.Equal(t, 8*4*4, font.Size())

	click, ok := m.Get(testutil.ClickSound)
	require.True(t, ok)
	assert.Equal(t, 16, click.Sound.Frames)

	b, ok := m.Boundary()
	require.True(t, ok)
	stats := m.Stats()
	assert.Equal(t, stats.GlobalMain.Used, b.Offset(), "boundary is the global cursor after loading")
	assert.Equal(t, b.Offset(), stats.Boundary)
	assert.Equal(t, 2, stats.GlobalMain.Live)
	assert.Zero(t, stats.GlobalCopy.Used, "staging is rewound after each decode")
	assert.Positive(t, stats.GlobalCopy.Peak, "raw bytes went through the copy region")

	pix, err := m.Bytes(font)
	require.NoError(t, err)
	c := font.Image.View(pix).RGBAAt(7, 2)
	assert.Equal(t, uint8(7), c.R)
	assert.Equal(t, uint8(2), c.G)
}

func TestLoadLevelResources_SkipsGlobals(t *testing.T) {
	m := newTestManager(t, testCaps)
	require.NoError(t, m.LoadGlobalResources(globals()))
	globalUsed := m.Stats().GlobalMain.Used

	desc, err := m.LoadLevel(testutil.ForestLevel)
	require.NoError(t, err)
	assert.Equal(t, "forest", desc.Name)
	assert.Equal(t, "forest", m.LevelName())

	assert.Equal(t, []string{testutil.BarkImage, testutil.BirdSound, testutil.TreeModel}, m.LevelResources().Paths())
	assert.False(t, m.LevelResources().Contains(testutil.FontImage), "font is shared with the global scope")
	assert.Equal(t, globalUsed, m.Stats().GlobalMain.Used, "level loading never touches global memory")

	tree, ok := m.Get(testutil.TreeModel)
	require.True(t, ok)
	payload, err := m.Bytes(tree)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8, 9}, payload[tree.Model.Buffers[1].Offset:][:3])
}

func TestLoadLevelResources_NotCumulative(t *testing.T) {
	m := newTestManager(t, testCaps)
	require.NoError(t, m.LoadGlobalResources(globals()))

	_, err := m.LoadLevel(testutil.ForestLevel)
	require.NoError(t, err)
	bark, ok := m.Get(testutil.BarkImage)
	require.True(t, ok)

	_, err = m.LoadLevel(testutil.CaveLevel)
	require.NoError(t, err)

	assert.Equal(t, []string{testutil.DripSound, testutil.RockModel}, m.LevelResources().Paths())
	_, ok = m.Get(testutil.BarkImage)
	assert.False(t, ok)

	_, err = m.Bytes(bark)
	require.ErrorIs(t, err, alloc.ErrStaleHandle, "first level's memory was reclaimed")

	rock, _ := m.Get(testutil.RockModel)
	drip, _ := m.Get(testutil.DripSound)
	assert.Equal(t, rock.Size()+drip.Size()+padding(rock.Size(), 4), m.Stats().LevelMain.Used)
}

func padding(n, align int) int {
	return (align - n%align) % align
}

func TestLoadLevelResources_Idempotent(t *testing.T) {
	m := newTestManager(t, testCaps)

	desc := level.New("cave", testutil.RockModel, testutil.DripSound)
	require.NoError(t, m.LoadLevelResources(desc))
	first := m.Stats().LevelMain

	require.NoError(t, m.LoadLevelResources(desc))
	assert.Equal(t, first.Used, m.Stats().LevelMain.Used)
	assert.Equal(t, 2, m.LevelResources().Len())
}

func TestUnloadLevelResources(t *testing.T) {
	m := newTestManager(t, testCaps)
	require.NoError(t, m.LoadGlobalResources(globals()))
	_, err := m.LoadLevel(testutil.ForestLevel)
	require.NoError(t, err)

	m.UnloadLevelResources()

	assert.True(t, m.LevelResources().IsEmpty())
	assert.Empty(t, m.LevelName())
	assert.Zero(t, m.Stats().LevelMain.Used)
	assert.Equal(t, 2, m.GlobalResources().Len())

	font, _ := m.Get(testutil.FontImage)
	_, err = m.Bytes(font)
	require.NoError(t, err, "global resources survive level unload")
}

func TestClear(t *testing.T) {
	m := newTestManager(t, testCaps)
	require.NoError(t, m.LoadGlobalResources(globals()))
	_, err := m.LoadLevel(testutil.CaveLevel)
	require.NoError(t, err)
	font, _ := m.Get(testutil.FontImage)

	m.Clear()

	assert.True(t, m.GlobalResources().IsEmpty())
	assert.True(t, m.LevelResources().IsEmpty())
	_, ok := m.Boundary()
	assert.False(t, ok)
	stats := m.Stats()
	assert.Zero(t, stats.GlobalMain.Used)
	assert.Zero(t, stats.LevelMain.Used)
	assert.Equal(t, -1, stats.Boundary)

	_, err = m.Bytes(font)
	require.ErrorIs(t, err, alloc.ErrStaleHandle)
}

func TestLoad_CallerSuppliedScope(t *testing.T) {
	m := newTestManager(t, testCaps)

	bark, err := m.Load(testutil.BarkImage, ScopeGlobal)
	require.NoError(t, err)
	bird, err := m.Load(testutil.BirdSound, ScopeLevel)
	require.NoError(t, err)

	assert.True(t, m.GlobalResources().Contains(testutil.BarkImage))
	assert.True(t, m.LevelResources().Contains(testutil.BirdSound))

	again, err := m.Load(`forest\bark.png`, ScopeLevel)
	require.NoError(t, err)
	assert.Same(t, bark, again, "a global resource is not duplicated into the level")

	again, err = m.Load(testutil.BirdSound, ScopeLevel)
	require.NoError(t, err)
	assert.Same(t, bird, again)
	assert.Equal(t, 1, m.Stats().LevelMain.Live)

	_, err = m.Load(testutil.BirdSound, Scope(7))
	require.Error(t, err)
}

func TestLoad_ExternalModelBuffer(t *testing.T) {
	m := newTestManager(t, testCaps)

	pine, err := m.Load(testutil.PineModel, ScopeLevel)
	require.NoError(t, err)
	require.Equal(t, []resource.BufferSpan{{Offset: 0, Length: len(testutil.PineData)}}, pine.Model.Buffers)

	payload, err := m.Bytes(pine)
	require.NoError(t, err)
	assert.Equal(t, testutil.PineData, payload, "buffer read from the file next to the document")
	assert.False(t, m.LevelResources().Contains(testutil.PineBuffer), "the buffer file is not a resource of its own")
}

func TestLoad_DecomposedFileName(t *testing.T) {
	const composed = "ui/caf\u00e9.png"
	m := newTestManager(t, testCaps)

	res, err := m.Load(testutil.AccentImage, ScopeGlobal)
	require.NoError(t, err, "the file is opened under the name the caller gave")
	assert.Equal(t, composed, res.Path, "registered under the composed form")
	assert.Equal(t, 2, res.Image.Width)

	got, ok := m.Get(composed)
	require.True(t, ok)
	assert.Same(t, res, got)

	again, err := m.Load(composed, ScopeGlobal)
	require.NoError(t, err)
	assert.Same(t, res, again, "both spellings name one resource")
	assert.Equal(t, 1, m.GlobalResources().Len())
}

func TestLoad_TGA(t *testing.T) {
	m := newTestManager(t, testCaps)

	banner, err := m.Load(testutil.BannerImage, ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, resource.KindImage, banner.Kind)
	assert.Equal(t, 3*2*4, banner.Size())

	pix, err := m.Bytes(banner)
	require.NoError(t, err)
	c := banner.Image.View(pix).RGBAAt(1, 1)
	assert.Equal(t, uint8(1), c.R)
	assert.Equal(t, uint8(1), c.G)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		op   string
		want error
	}{
		{"missing", "ui/missing.png", OpOpen, vfs.ErrNotExist},
		{"invalid path", "", OpOpen, vfs.ErrInvalidPath},
		{"unsupported", testutil.UnknownFile, OpDecode, resource.ErrUnsupportedExtension},
		{"corrupt", testutil.CorruptPNG, OpDecode, resource.ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, testCaps)

			_, err := m.Load(tt.path, ScopeLevel)
			require.ErrorIs(t, err, tt.want)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.op, le.Op)
			assert.Equal(t, ScopeLevel, le.Scope)

			stats := m.Stats()
			assert.Zero(t, stats.LevelMain.Used)
			assert.Zero(t, stats.LevelCopy.Used)
			assert.True(t, m.LevelResources().IsEmpty())
		})
	}
}

func TestLoadLevelResources_PartialBatch(t *testing.T) {
	// bark (64) and tree (11, at 64) fit; bird (256) does not.
	m := newTestManager(t, alloc.Capacities{Global: 1024, GlobalCopy: 4096, Level: 100, LevelCopy: 4096})

	desc := level.New("forest", testutil.BarkImage, testutil.TreeModel, testutil.BirdSound)
	err := m.LoadLevelResources(desc)
	require.ErrorIs(t, err, alloc.ErrOutOfMemory)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, testutil.BirdSound, le.Path)
	assert.Equal(t, OpDecode, le.Op)

	var oom *alloc.OutOfMemoryError
	require.ErrorAs(t, err, &oom)
	assert.Equal(t, 1+256, oom.Requested, "one byte of padding to reach 4-byte alignment")
	assert.Equal(t, 100-75, oom.Remaining)

	assert.Equal(t, []string{testutil.BarkImage, testutil.TreeModel}, m.LevelResources().Paths(),
		"resources loaded before the failure stay loaded")
	assert.Equal(t, 75, m.Stats().LevelMain.Used)

	m.UnloadLevelResources()
	assert.Zero(t, m.Stats().LevelMain.Used)
}

func TestLoadGlobalResources_FailureSkipsBoundary(t *testing.T) {
	m := newTestManager(t, testCaps)

	err := m.LoadGlobalResources([]string{testutil.FontImage, "ui/missing.wav"})
	require.ErrorIs(t, err, vfs.ErrNotExist)

	_, ok := m.Boundary()
	assert.False(t, ok)
	assert.Equal(t, 1, m.GlobalResources().Len())
}

func TestLoad_WithoutStaging(t *testing.T) {
	m := newTestManager(t, alloc.Capacities{Global: 4096, Level: 4096})

	res, err := m.Load(testutil.ClickSound, ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, 16, res.Sound.Frames)
	assert.Zero(t, m.Stats().GlobalCopy.Peak, "files that do not fit the copy region are streamed")
}

func TestNew_Logging(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m, err := New(vfs.FromFS(testutil.AssetFS(t)), Options{Capacities: testCaps, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	_, err = m.Load(testutil.FontImage, ScopeGlobal)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"msg":"resource loaded"`)
	assert.Contains(t, out.String(), `"path":"ui/font.png"`)
	assert.Contains(t, out.String(), `"scope":"global"`)
	assert.Contains(t, out.String(), `"bytes":128`)
}

func TestNew_NilFilesystem(t *testing.T) {
	_, err := New(nil, Options{})
	require.Error(t, err)
}

func TestClose(t *testing.T) {
	m := newTestManager(t, testCaps)
	res, err := m.Load(testutil.FontImage, ScopeGlobal)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = m.Load(testutil.ClickSound, ScopeGlobal)
	require.ErrorIs(t, err, ErrClosed)
	_, err = m.Bytes(res)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, m.LoadGlobalResources(nil), ErrClosed)
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "global", ScopeGlobal.String())
	assert.Equal(t, "level", ScopeLevel.String())
	assert.Equal(t, "scope(3)", Scope(3).String())
}
