package loaders

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/material"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

var (
	// ErrInvalidSceneFile is returned when a scene file decodes but its
	// contents cannot describe a scene
	ErrInvalidSceneFile = errors.New("invalid scene file")

	// ErrUnknownScene is returned by ResolveScene for references that name
	// neither a built-in scene nor a scene file
	ErrUnknownScene = errors.New("unknown scene")
)

// sceneFile is the on-disk layout of a scene description
type sceneFile struct {
	Name            string       `yaml:"name,omitempty"`
	Width           int          `yaml:"width"`
	Height          int          `yaml:"height"`
	SamplesPerPixel int          `yaml:"samples_per_pixel"`
	Camera          *cameraFile  `yaml:"camera,omitempty"`
	Objects         []objectFile `yaml:"objects"`
}

type cameraFile struct {
	Position         []float64 `yaml:"position,flow"`
	Forward          []float64 `yaml:"forward,flow"`
	Up               []float64 `yaml:"up,flow"`
	ScreenDistance   float64   `yaml:"screen_distance"`
	ScreenHalfExtent float64   `yaml:"screen_half_extent"`
}

type objectFile struct {
	Center   []float64 `yaml:"center,flow"`
	Radius   float64   `yaml:"radius"`
	Albedo   []float64 `yaml:"albedo,flow,omitempty"`
	Color    []float64 `yaml:"color,flow,omitempty"` // alias for albedo
	Emission []float64 `yaml:"emission,flow,omitempty"`
	Material string    `yaml:"material,omitempty"`
}

// ResolveScene turns a scene reference into a description. A reference is
// a built-in scene ID, "file:<name>" for a scene file listed in scenesDir,
// or a path to a YAML file.
func ResolveScene(ref, scenesDir string) (scene.Description, error) {
	if desc, ok := scene.Builtin(ref); ok {
		return desc, nil
	}

	if strings.HasPrefix(ref, "file:") {
		files, err := scene.ListSceneFiles(scenesDir)
		if err != nil {
			return scene.Description{}, err
		}
		for _, info := range files {
			if info.ID == ref {
				return LoadScene(info.FilePath)
			}
		}
		return scene.Description{}, errors.Wrapf(ErrUnknownScene, "%q not found in %s", ref, scenesDir)
	}

	ext := strings.ToLower(filepath.Ext(ref))
	if ext == ".yaml" || ext == ".yml" {
		return LoadScene(ref)
	}
	return scene.Description{}, errors.Wrapf(ErrUnknownScene, "%q", ref)
}

// LoadScene reads a YAML scene description from disk. A file without a name
// is named after the file.
func LoadScene(path string) (scene.Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scene.Description{}, errors.Wrap(err, "failed to read scene file")
	}

	desc, err := ParseScene(bytes.NewReader(data))
	if err != nil {
		return scene.Description{}, errors.Wrapf(err, "scene file %s", path)
	}
	if desc.Name == "" {
		desc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return desc, nil
}

// ParseScene decodes a YAML scene description. Unknown keys are rejected.
// The result is not validated beyond its shape; scene.New does that.
func ParseScene(r io.Reader) (scene.Description, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file sceneFile
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return scene.Description{}, errors.Wrap(ErrInvalidSceneFile, "empty document")
		}
		return scene.Description{}, errors.Wrap(err, "failed to parse scene YAML")
	}

	desc := scene.Description{
		Name:            file.Name,
		Width:           file.Width,
		Height:          file.Height,
		SamplesPerPixel: file.SamplesPerPixel,
		Objects:         make([]scene.Object, 0, len(file.Objects)),
	}

	if file.Camera != nil {
		camera, err := file.Camera.toConfig()
		if err != nil {
			return scene.Description{}, errors.Wrap(err, "camera")
		}
		desc.Camera = camera
	} else {
		desc.Camera = scene.DefaultCamera()
	}

	for i, obj := range file.Objects {
		object, err := obj.toObject()
		if err != nil {
			return scene.Description{}, errors.Wrapf(err, "object %d", i)
		}
		desc.Objects = append(desc.Objects, object)
	}

	return desc, nil
}

// SaveScene writes desc as YAML
func SaveScene(path string, desc scene.Description) error {
	data, err := MarshalScene(desc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scene file")
	}
	return nil
}

// MarshalScene encodes desc in the same layout ParseScene reads
func MarshalScene(desc scene.Description) ([]byte, error) {
	file := sceneFile{
		Name:            desc.Name,
		Width:           desc.Width,
		Height:          desc.Height,
		SamplesPerPixel: desc.SamplesPerPixel,
		Camera: &cameraFile{
			Position:         vecToSlice(desc.Camera.Position),
			Forward:          vecToSlice(desc.Camera.Forward),
			Up:               vecToSlice(desc.Camera.Up),
			ScreenDistance:   desc.Camera.ScreenDistance,
			ScreenHalfExtent: desc.Camera.ScreenHalfExtent,
		},
	}
	for _, obj := range desc.Objects {
		entry := objectFile{
			Center:   vecToSlice(obj.Center),
			Radius:   obj.Radius,
			Albedo:   colorToSlice(obj.Albedo),
			Material: string(obj.Material),
		}
		if !obj.Emission.IsBlack() {
			entry.Emission = colorToSlice(obj.Emission)
		}
		file.Objects = append(file.Objects, entry)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(file); err != nil {
		return nil, errors.Wrap(err, "failed to encode scene YAML")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode scene YAML")
	}
	return buf.Bytes(), nil
}

func (c *cameraFile) toConfig() (scene.CameraConfig, error) {
	defaults := scene.DefaultCamera()
	config := scene.CameraConfig{
		Position:         defaults.Position,
		Forward:          defaults.Forward,
		Up:               defaults.Up,
		ScreenDistance:   c.ScreenDistance,
		ScreenHalfExtent: c.ScreenHalfExtent,
	}

	var err error
	if c.Position != nil {
		if config.Position, err = parseVec("position", c.Position); err != nil {
			return scene.CameraConfig{}, err
		}
	}
	if c.Forward != nil {
		if config.Forward, err = parseVec("forward", c.Forward); err != nil {
			return scene.CameraConfig{}, err
		}
	}
	if c.Up != nil {
		if config.Up, err = parseVec("up", c.Up); err != nil {
			return scene.CameraConfig{}, err
		}
	}
	if config.ScreenDistance == 0 {
		config.ScreenDistance = defaults.ScreenDistance
	}
	if config.ScreenHalfExtent == 0 {
		config.ScreenHalfExtent = defaults.ScreenHalfExtent
	}
	return config, nil
}

func (o objectFile) toObject() (scene.Object, error) {
	center, err := parseVec("center", o.Center)
	if err != nil {
		return scene.Object{}, err
	}

	albedoValues := o.Albedo
	if o.Color != nil {
		if o.Albedo != nil {
			return scene.Object{}, errors.Wrap(ErrInvalidSceneFile, "both albedo and color are set")
		}
		albedoValues = o.Color
	}
	albedo := core.Black
	if albedoValues != nil {
		if albedo, err = parseColor("albedo", albedoValues); err != nil {
			return scene.Object{}, err
		}
	}

	emission := core.Black
	if o.Emission != nil {
		if emission, err = parseColor("emission", o.Emission); err != nil {
			return scene.Object{}, err
		}
	}

	materialType, err := material.ParseType(o.Material)
	if err != nil {
		return scene.Object{}, err
	}

	return scene.Object{
		Center:   center,
		Radius:   o.Radius,
		Albedo:   albedo,
		Emission: emission,
		Material: materialType,
	}, nil
}

func parseVec(field string, values []float64) (core.Vec3, error) {
	if len(values) != 3 {
		return core.Vec3{}, errors.Wrapf(ErrInvalidSceneFile, "%s needs 3 components, got %d", field, len(values))
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

func parseColor(field string, values []float64) (core.Color, error) {
	if len(values) != 3 {
		return core.Color{}, errors.Wrapf(ErrInvalidSceneFile, "%s needs 3 components, got %d", field, len(values))
	}
	return core.NewColor(values[0], values[1], values[2]), nil
}

func vecToSlice(v core.Vec3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func colorToSlice(c core.Color) []float64 {
	return []float64{c.R, c.G, c.B}
}
