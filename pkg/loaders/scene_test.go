package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/material"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

const sampleScene = `# Scene: Two Spheres
name: two-spheres
width: 64
height: 48
samples_per_pixel: 16
camera:
  position: [0, 1, -4]
  forward: [0, 0, 1]
  up: [0, 1, 0]
  screen_distance: 1
  screen_half_extent: 0.6
objects:
  - center: [0, -100.5, 0]
    radius: 100
    albedo: [0.5, 0.5, 0.5]
  - center: [0, 2, 0]
    radius: 0.5
    color: [0, 0, 0]
    emission: [4, 4, 4]
    material: Diffuse
`

func TestParseScene(t *testing.T) {
	desc, err := ParseScene(strings.NewReader(sampleScene))
	require.NoError(t, err)

	assert.Equal(t, "two-spheres", desc.Name)
	assert.Equal(t, 64, desc.Width)
	assert.Equal(t, 48, desc.Height)
	assert.Equal(t, 16, desc.SamplesPerPixel)

	assert.Equal(t, core.NewVec3(0, 1, -4), desc.Camera.Position)
	assert.Equal(t, 1.0, desc.Camera.ScreenDistance)
	assert.Equal(t, 0.6, desc.Camera.ScreenHalfExtent)

	require.Len(t, desc.Objects, 2)
	assert.Equal(t, core.NewVec3(0, -100.5, 0), desc.Objects[0].Center)
	assert.Equal(t, core.Gray(0.5), desc.Objects[0].Albedo)
	assert.True(t, desc.Objects[0].Emission.IsBlack())
	assert.Equal(t, material.Diffuse, desc.Objects[0].Material)

	// color is accepted as an alias for albedo, material names ignore case
	assert.Equal(t, core.Black, desc.Objects[1].Albedo)
	assert.Equal(t, core.Gray(4), desc.Objects[1].Emission)
	assert.Equal(t, material.Diffuse, desc.Objects[1].Material)

	s, err := scene.New(desc)
	require.NoError(t, err)
	assert.Equal(t, 1, s.LightCount())
}

func TestParseSceneDefaultCamera(t *testing.T) {
	desc, err := ParseScene(strings.NewReader(`
width: 8
height: 8
samples_per_pixel: 1
objects:
  - center: [0, 0, 1]
    radius: 0.5
    albedo: [0.9, 0.9, 0.9]
`))
	require.NoError(t, err)
	assert.Equal(t, scene.DefaultCamera(), desc.Camera)
}

func TestParseScenePartialCamera(t *testing.T) {
	desc, err := ParseScene(strings.NewReader(`
width: 8
height: 8
samples_per_pixel: 1
camera:
  position: [1, 2, 3]
objects: []
`))
	require.NoError(t, err)

	want := scene.DefaultCamera()
	want.Position = core.NewVec3(1, 2, 3)
	assert.Equal(t, want, desc.Camera)
}

func TestParseSceneErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "empty document",
			yaml:    "",
			wantErr: ErrInvalidSceneFile,
		},
		{
			name: "short vector",
			yaml: `
width: 8
height: 8
samples_per_pixel: 1
objects:
  - center: [0, 0]
    radius: 1
`,
			wantErr: ErrInvalidSceneFile,
		},
		{
			name: "albedo and color",
			yaml: `
width: 8
height: 8
samples_per_pixel: 1
objects:
  - center: [0, 0, 0]
    radius: 1
    albedo: [1, 1, 1]
    color: [1, 1, 1]
`,
			wantErr: ErrInvalidSceneFile,
		},
		{
			name: "unknown material",
			yaml: `
width: 8
height: 8
samples_per_pixel: 1
objects:
  - center: [0, 0, 0]
    radius: 1
    material: glass
`,
			wantErr: material.ErrUnknownMaterial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScene(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestParseSceneRejectsUnknownKeys(t *testing.T) {
	_, err := ParseScene(strings.NewReader(`
width: 8
height: 8
samples_per_pixel: 1
fov: 90
objects: []
`))
	assert.Error(t, err)
}

func TestLoadSceneNamesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lonely.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
width: 8
height: 8
samples_per_pixel: 1
objects: []
`), 0o644))

	desc, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, "lonely", desc.Name)
}

func TestLoadSceneMissingFile(t *testing.T) {
	_, err := LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveSceneRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cornell.yaml")
	original := scene.NewCornellDescription()

	require.NoError(t, SaveScene(path, original))
	loaded, err := LoadScene(path)
	require.NoError(t, err)

	assert.Equal(t, original, loaded)
}

func TestResolveScene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`# Scene: Glow
width: 8
height: 8
samples_per_pixel: 1
objects:
  - center: [0, 0, 0]
    radius: 10
    emission: [1, 1, 1]
`), 0o644))

	builtin, err := ResolveScene("cornell", dir)
	require.NoError(t, err)
	assert.Equal(t, "cornell", builtin.Name)

	byID, err := ResolveScene("file:glow", dir)
	require.NoError(t, err)
	assert.Equal(t, "glow", byID.Name)

	byPath, err := ResolveScene(path, "")
	require.NoError(t, err)
	assert.Equal(t, byID, byPath)

	for _, ref := range []string{"file:missing", "nonsense", "../glow"} {
		_, err := ResolveScene(ref, dir)
		assert.True(t, errors.Is(err, ErrUnknownScene), "%s: expected ErrUnknownScene, got %v", ref, err)
	}
}

func TestBundledSceneFiles(t *testing.T) {
	files, err := scene.ListSceneFiles(filepath.Join("..", "..", "scenes"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, info := range files {
		t.Run(info.ID, func(t *testing.T) {
			desc, err := ResolveScene(info.ID, filepath.Join("..", "..", "scenes"))
			require.NoError(t, err)

			s, err := scene.New(desc, scene.WithRequireLights())
			require.NoError(t, err)
			assert.NotEmpty(t, info.Description)
			assert.Equal(t, "Examples", info.Group)
			assert.Positive(t, s.LightCount())
		})
	}
}
