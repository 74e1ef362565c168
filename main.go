package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/df07/sphere-pathtracer/pkg/config"
	"github.com/df07/sphere-pathtracer/pkg/loaders"
	"github.com/df07/sphere-pathtracer/pkg/renderer"
	"github.com/df07/sphere-pathtracer/pkg/scene"
	"github.com/df07/sphere-pathtracer/web/server"
)

const appName = "pathtracer"

// app carries the state shared by every subcommand
type app struct {
	viper      *viper.Viper
	configFile string
	config     *config.Config
	logger     zerolog.Logger
	logOutput  io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Logs go to logOutput, command results
// to the command's output stream.
func newRootCmd(logOutput io.Writer) *cobra.Command {
	a := &app{
		viper:     config.NewViper(),
		logOutput: logOutput,
	}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Progressive Monte Carlo path tracer for sphere scenes",
		Long: `pathtracer renders scenes made of spheres with diffuse materials and
spherical area lights. Images converge progressively over several passes
and can be written as PNG or PPM, or previewed in the browser with serve.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file")
	flags.String("log-level", config.Default().Log.Level, "log level (debug, info, warn, error)")
	flags.Bool("log-pretty", config.Default().Log.Pretty, "human readable logs instead of JSON")
	flags.String("scenes-dir", config.Default().Server.ScenesDir, "directory holding YAML scene files")
	a.bind(flags.Lookup("log-level"), "log.level")
	a.bind(flags.Lookup("log-pretty"), "log.pretty")
	a.bind(flags.Lookup("scenes-dir"), "server.scenes_dir")

	rootCmd.AddCommand(a.newRenderCmd(), a.newScenesCmd(), a.newServeCmd())
	return rootCmd
}

func (a *app) bind(flag *pflag.Flag, key string) {
	if err := a.viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// initConfig layers the config file over defaults and environment, then
// builds the logger every subcommand uses
func (a *app) initConfig(cmd *cobra.Command, args []string) error {
	if a.configFile != "" {
		if err := config.ReadConfigFile(a.viper, a.configFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log, a.logOutput)
	if err != nil {
		return err
	}

	a.config = cfg
	a.logger = logger
	return nil
}

func (a *app) newRenderCmd() *cobra.Command {
	var width, height int
	var saveScene string

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene to an image file",
		Long: `Render a built-in scene, a scene file from the scenes directory
("file:<name>") or a YAML scene file given by path. The scene defaults to
cornell.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := "cornell"
			if len(args) == 1 {
				ref = args[0]
			}
			return a.render(cmd, ref, width, height, saveScene)
		},
	}

	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringP("output", "o", defaults.Output.Path, "output image path")
	flags.String("format", defaults.Output.Format, "image format (png, ppm); inferred from the output path when empty")
	flags.Int("spp", defaults.Render.SamplesPerPixel, "samples per pixel; 0 uses the scene's value")
	flags.Int("passes", defaults.Render.Passes, "number of progressive passes")
	flags.Int64("seed", defaults.Render.Seed, "random seed; 0 seeds from the clock")
	flags.Int("workers", defaults.Render.Workers, "render workers; 0 uses every CPU")
	flags.String("integrator", defaults.Render.Integrator, "integrator (path, implicit)")
	flags.Bool("require-lights", defaults.Render.RequireLights, "fail on scenes without emissive objects")
	flags.IntVar(&width, "width", 0, "override the scene's image width")
	flags.IntVar(&height, "height", 0, "override the scene's image height")
	flags.StringVar(&saveScene, "save-scene", "", "also write the resolved scene as YAML to this path")

	a.bind(flags.Lookup("output"), "output.path")
	a.bind(flags.Lookup("format"), "output.format")
	a.bind(flags.Lookup("spp"), "render.samples_per_pixel")
	a.bind(flags.Lookup("passes"), "render.passes")
	a.bind(flags.Lookup("seed"), "render.seed")
	a.bind(flags.Lookup("workers"), "render.workers")
	a.bind(flags.Lookup("integrator"), "render.integrator")
	a.bind(flags.Lookup("require-lights"), "render.require_lights")
	return cmd
}

func (a *app) render(cmd *cobra.Command, ref string, width, height int, saveScene string) error {
	cfg, logger := a.config, a.logger

	desc, err := loaders.ResolveScene(ref, cfg.Server.ScenesDir)
	if err != nil {
		return err
	}
	if width > 0 {
		desc.Width = width
	}
	if height > 0 {
		desc.Height = height
	}
	if saveScene != "" {
		if err := loaders.SaveScene(saveScene, desc); err != nil {
			return err
		}
		logger.Info().Str("path", saveScene).Msg("scene saved")
	}

	opts := []scene.Option{scene.WithLogger(logger)}
	if cfg.Render.RequireLights {
		opts = append(opts, scene.WithRequireLights())
	}
	s, err := scene.New(desc, opts...)
	if err != nil {
		return err
	}

	integ, err := cfg.NewIntegrator()
	if err != nil {
		return err
	}
	rt, err := renderer.NewRaytracer(s, integ, cfg.RendererConfig(), logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("scene", s.Name).
		Int("width", s.Width).
		Int("height", s.Height).
		Str("integrator", cfg.Render.Integrator).
		Int64("seed", rt.Seed()).
		Msg("rendering")

	start := time.Now()
	buf, stats, err := rt.Render(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "render failed")
	}

	if err := loaders.WriteImage(cfg.Output.Path, cfg.Output.Format, buf.ToRGBA()); err != nil {
		return err
	}

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("total_samples", stats.TotalSamples).
		Float64("avg_samples", stats.AverageSamples).
		Int("scrubbed", stats.ScrubbedSamples).
		Float64("mean_luminance", stats.MeanLuminance).
		Float64("mean_std_error", stats.MeanStandardError).
		Msg("render completed")

	fmt.Fprintln(cmd.OutOrStdout(), cfg.Output.Path)
	return nil
}

func (a *app) newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List built-in scenes and scene files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := scene.ListAllScenes(a.config.Server.ScenesDir)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tGROUP\tDESCRIPTION")
			for _, group := range response.Groups {
				for _, info := range group.Scenes {
					fmt.Fprintf(w, "%s\t%s\t%s\n", info.ID, group.Name, info.Description)
				}
			}
			return w.Flush()
		},
	}
}

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the progressive web preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.NewServer(a.config, a.logger).Start(cmd.Context())
		},
	}

	cmd.Flags().Int("port", config.Default().Server.Port, "port to listen on")
	a.bind(cmd.Flags().Lookup("port"), "server.port")
	return cmd
}
