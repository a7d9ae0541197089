package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/archetype"
	"github.com/chazu/reactorcad/pkg/config"
	"github.com/chazu/reactorcad/pkg/errdefs"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitInvalid = 2
	ExitKernel  = 3
	ExitIO      = 4
)

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch errdefs.KindOf(err) {
	case errdefs.KindInvalidParameter, errdefs.KindInvalidGeometry,
		errdefs.KindComposition, errdefs.KindWorkplane, errdefs.KindExport:
		return ExitInvalid
	case errdefs.KindKernel:
		return ExitKernel
	case errdefs.KindIO:
		return ExitIO
	}
	return ExitFailure
}

// cli holds the flag values and the state shared by every command.
type cli struct {
	stdout io.Writer

	configPath      string
	paramsPath      string
	archetypeName   string
	out             string
	logLevel        string
	units           string
	meshCells       int
	graveyardSize   float64
	graveyardOffset float64
	noGraveyard     bool
	combined        bool

	logger *zap.Logger
	app    *App
}

// exports lists the export subcommands: name, format and description.
var exports = []struct {
	name, format, short string
}{
	{"export-stp", FormatSTP, "Write one STEP file per shape"},
	{"export-stl", FormatSTL, "Write one STL file per shape"},
	{"export-h5m", FormatH5M, "Write a DAGMC neutronics model"},
	{"export-svg", FormatSVG, "Write a projected line drawing"},
	{"export-html", FormatHTML, "Write a standalone 3D viewer page"},
	{"export-dxf", FormatDXF, "Write the XZ cross-section as DXF"},
	{"export-manifest", FormatManifest, "Write the neutronics manifest JSON"},
	{"export-groups", FormatGroups, "Write per-shape physical group JSON files"},
}

// newRootCmd builds the reactorcad command tree.
func newRootCmd(stdout io.Writer) *cobra.Command {
	c := &cli{stdout: stdout}

	root := &cobra.Command{
		Use:   "reactorcad",
		Short: "reactorcad - parametric fusion reactor geometry",
		Long: `reactorcad builds parametric fusion reactor geometry from an archetype
and its parameters, and exports it for CAD and neutronics workflows.

Parameters are read from a .json, .yaml or .zy (script) file:

  archetype: ball
  params:
    rotation_angle: 90
    pf_coil_radial_position: [500, 500]`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errdefs.Invalidf("reactorcad", "%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "Configuration file (or set REACTORCAD_CONFIG)")
	pf.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	for _, e := range exports {
		root.AddCommand(c.exportCmd(e.name, e.format, e.short))
	}
	root.AddCommand(c.validateCmd(), c.archetypesCmd())
	return root
}

// addReactorFlags registers the flags of commands that build a reactor.
func (c *cli) addReactorFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&c.paramsPath, "params", "", "Parameter file (.json, .yaml, .yml or .zy)")
	f.StringVar(&c.archetypeName, "archetype", "", "Build this archetype with its default parameters")
	f.StringVarP(&c.out, "out", "o", "", "Output directory, or file for single-file exports")
	f.StringVar(&c.units, "units", "", "STEP length unit: mm or cm")
	f.IntVar(&c.meshCells, "mesh-cells", 0, "Marching cubes cells along the longest side")
	f.Float64Var(&c.graveyardSize, "graveyard-size", 0, "Inner edge of the graveyard cube")
	f.Float64Var(&c.graveyardOffset, "graveyard-offset", 0, "Gap between the reactor and the graveyard")
	f.BoolVar(&c.noGraveyard, "no-graveyard", false, "Leave the graveyard out of neutronics exports")
	f.BoolVar(&c.combined, "combined", false, "Also write every shape into one STEP or STL file")
	cmd.MarkFlagsMutuallyExclusive("params", "archetype")
	cmd.MarkFlagsOneRequired("params", "archetype")
}

// setup loads the configuration, applies the flags that were set and
// builds the logger and App.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if f.Changed("out") {
		cfg.Out = c.out
	}
	if f.Changed("units") {
		cfg.Reactor.Units = c.units
	}
	if f.Changed("mesh-cells") {
		cfg.Reactor.MeshCells = c.meshCells
	}
	if f.Changed("graveyard-size") {
		cfg.Reactor.GraveyardSize = c.graveyardSize
	}
	if f.Changed("graveyard-offset") {
		cfg.Reactor.GraveyardOffset = c.graveyardOffset
	}
	if f.Changed("no-graveyard") {
		cfg.Reactor.IncludeGraveyard = !c.noGraveyard
	}
	if f.Changed("combined") {
		cfg.Combined = c.combined
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.logger, err = cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.app = NewApp(cfg, c.logger)
	return nil
}

// request resolves the archetype request from --params or --archetype.
func (c *cli) request(ctx context.Context) (archetype.Request, error) {
	if c.paramsPath != "" {
		return c.app.LoadRequest(ctx, c.paramsPath)
	}
	return archetype.Request{Archetype: c.archetypeName}, nil
}

func (c *cli) exportCmd(name, format, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := c.request(cmd.Context())
			if err != nil {
				return err
			}
			r, err := c.app.Reactor(req)
			if err != nil {
				return err
			}
			paths, err := c.app.Export(cmd.Context(), format, r)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(c.stdout, p)
			}
			return nil
		},
	}
	c.addReactorFlags(cmd)
	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Build every shape and report composition errors and advisories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := c.request(cmd.Context())
			if err != nil {
				return err
			}
			r, err := c.app.Reactor(req)
			if err != nil {
				return err
			}
			res, err := c.app.Validate(cmd.Context(), r)
			for _, w := range res.Warnings {
				fmt.Fprintf(c.stdout, "warning: %s\n", w)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "ok: %s\n", strings.Join(r.ShapeNames(), ", "))
			return nil
		},
	}
	c.addReactorFlags(cmd)
	return cmd
}

func (c *cli) archetypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archetypes",
		Short: "List the reactor archetypes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, n := range archetype.Names() {
				fmt.Fprintln(c.stdout, n)
			}
			return nil
		},
	}
}
