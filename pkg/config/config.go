package config

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/df07/sphere-pathtracer/pkg/integrator"
	"github.com/df07/sphere-pathtracer/pkg/loaders"
	"github.com/df07/sphere-pathtracer/pkg/renderer"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. PATHTRACER_RENDER_SEED for render.seed
const EnvPrefix = "PATHTRACER"

// ErrInvalidConfig is returned by Validate and Load
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the application configuration
type Config struct {
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// RenderConfig contains renderer and integrator settings
type RenderConfig struct {
	Workers         int     `yaml:"workers" mapstructure:"workers"`
	TileSize        int     `yaml:"tile_size" mapstructure:"tile_size"`
	Seed            int64   `yaml:"seed" mapstructure:"seed"`
	Gamma           float64 `yaml:"gamma" mapstructure:"gamma"`
	Passes          int     `yaml:"passes" mapstructure:"passes"`
	InitialSamples  int     `yaml:"initial_samples" mapstructure:"initial_samples"`
	SamplesPerPixel int     `yaml:"samples_per_pixel" mapstructure:"samples_per_pixel"`
	Integrator      string  `yaml:"integrator" mapstructure:"integrator"`
	RequireLights   bool    `yaml:"require_lights" mapstructure:"require_lights"`
	RRMinBounces    int     `yaml:"rr_min_bounces" mapstructure:"rr_min_bounces"`
	RRDecayDepth    int     `yaml:"rr_decay_depth" mapstructure:"rr_decay_depth"`
}

// OutputConfig contains image output settings
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// ServerConfig contains web preview settings
type ServerConfig struct {
	Port      int    `yaml:"port" mapstructure:"port"`
	ScenesDir string `yaml:"scenes_dir" mapstructure:"scenes_dir"`
}

// Default returns a default configuration
func Default() *Config {
	rendererDefaults := renderer.DefaultConfig()
	rr := integrator.DefaultRussianRoulette()

	return &Config{
		Render: RenderConfig{
			Workers:        rendererDefaults.NumWorkers,
			TileSize:       rendererDefaults.TileSize,
			Seed:           rendererDefaults.Seed,
			Gamma:          rendererDefaults.Gamma,
			Passes:         rendererDefaults.Passes,
			InitialSamples: rendererDefaults.InitialSamples,
			Integrator:     integrator.NamePathTracing,
			RRMinBounces:   rr.GuaranteedDepth,
			RRDecayDepth:   rr.DecayDepth,
		},
		Output: OutputConfig{
			Path: "output/render.png",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Server: ServerConfig{
			Port:      8080,
			ScenesDir: "scenes",
		},
	}
}

// SetDefaults registers every key with its default value, so that
// environment variables can override keys missing from the config file
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("render.workers", d.Render.Workers)
	v.SetDefault("render.tile_size", d.Render.TileSize)
	v.SetDefault("render.seed", d.Render.Seed)
	v.SetDefault("render.gamma", d.Render.Gamma)
	v.SetDefault("render.passes", d.Render.Passes)
	v.SetDefault("render.initial_samples", d.Render.InitialSamples)
	v.SetDefault("render.samples_per_pixel", d.Render.SamplesPerPixel)
	v.SetDefault("render.integrator", d.Render.Integrator)
	v.SetDefault("render.require_lights", d.Render.RequireLights)
	v.SetDefault("render.rr_min_bounces", d.Render.RRMinBounces)
	v.SetDefault("render.rr_decay_depth", d.Render.RRDecayDepth)

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.scenes_dir", d.Server.ScenesDir)
}

// NewViper returns a viper instance with defaults and environment overrides
// set up
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadConfigFile merges a YAML config file into v
func ReadConfigFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "error reading config file")
	}
	return nil
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every setting that has a restricted range
func (c *Config) Validate() error {
	r := c.Render
	switch {
	case r.Workers < 0:
		return errors.Wrapf(ErrInvalidConfig, "render.workers must not be negative, got %d", r.Workers)
	case r.TileSize <= 0:
		return errors.Wrapf(ErrInvalidConfig, "render.tile_size must be positive, got %d", r.TileSize)
	case !(r.Gamma > 0):
		return errors.Wrapf(ErrInvalidConfig, "render.gamma must be positive, got %g", r.Gamma)
	case r.Passes <= 0:
		return errors.Wrapf(ErrInvalidConfig, "render.passes must be positive, got %d", r.Passes)
	case r.InitialSamples <= 0:
		return errors.Wrapf(ErrInvalidConfig, "render.initial_samples must be positive, got %d", r.InitialSamples)
	case r.SamplesPerPixel < 0:
		return errors.Wrapf(ErrInvalidConfig, "render.samples_per_pixel must not be negative, got %d", r.SamplesPerPixel)
	case r.RRMinBounces < 0:
		return errors.Wrapf(ErrInvalidConfig, "render.rr_min_bounces must not be negative, got %d", r.RRMinBounces)
	case r.RRDecayDepth <= r.RRMinBounces:
		return errors.Wrapf(ErrInvalidConfig, "render.rr_decay_depth (%d) must exceed render.rr_min_bounces (%d)", r.RRDecayDepth, r.RRMinBounces)
	}

	if _, err := integrator.New(r.Integrator, integrator.DefaultConfig()); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if c.Output.Format != "" {
		if _, err := loaders.FormatFromPath("x." + c.Output.Format); err != nil {
			return errors.Wrap(ErrInvalidConfig, err.Error())
		}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log.level: %v", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Wrapf(ErrInvalidConfig, "server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// RendererConfig converts the render settings into renderer.Config
func (c *Config) RendererConfig() renderer.Config {
	return renderer.Config{
		NumWorkers:      c.Render.Workers,
		TileSize:        c.Render.TileSize,
		Seed:            c.Render.Seed,
		Gamma:           c.Render.Gamma,
		Passes:          c.Render.Passes,
		InitialSamples:  c.Render.InitialSamples,
		SamplesPerPixel: c.Render.SamplesPerPixel,
	}
}

// IntegratorConfig converts the render settings into integrator.Config
func (c *Config) IntegratorConfig() integrator.Config {
	config := integrator.DefaultConfig()
	config.RussianRoulette = integrator.RussianRoulette{
		GuaranteedDepth: c.Render.RRMinBounces,
		DecayDepth:      c.Render.RRDecayDepth,
	}
	return config
}

// NewIntegrator builds the configured integrator
func (c *Config) NewIntegrator() (integrator.Integrator, error) {
	return integrator.New(c.Render.Integrator, c.IntegratorConfig())
}

// NewLogger builds a leveled logger writing to w. Pretty output uses the
// human readable console writer, otherwise one JSON object per line.
func NewLogger(config LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if config.Level != "" {
		parsed, err := zerolog.ParseLevel(config.Level)
		if err != nil {
			return zerolog.Nop(), errors.Wrapf(ErrInvalidConfig, "log.level: %v", err)
		}
		level = parsed
	}

	if config.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
