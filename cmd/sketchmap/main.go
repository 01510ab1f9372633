package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/bodgit/sketchmap"
	"github.com/bodgit/sketchmap/config"
	"github.com/bodgit/sketchmap/grid"
	"github.com/bodgit/sketchmap/memhost"
	"github.com/bodgit/sketchmap/palette"
	"github.com/bodgit/sketchmap/surface"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	console "github.com/phsym/console-slog"
	"github.com/urfave/cli/v2"
)

const defaultConfig = "sketchmap.yaml"

type session struct {
	sm     *sketchmap.SketchMap
	db     *sketchmap.DB
	logger *slog.Logger
}

func (a *session) Close() error {
	return a.db.Close()
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func readConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Read(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("db") {
		cfg.Database = c.String("db")
	}
	if c.IsSet("world") {
		cfg.World = c.String("world")
	}
	return cfg, nil
}

// Opens the database and restores every stored mosaic
func setup(c *cli.Context) (*session, error) {
	logger := newLogger(c)

	cfg, err := readConfig(c)
	if err != nil {
		return nil, err
	}

	db, err := sketchmap.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	host := memhost.New()
	writer := surface.NewWriter(surface.NewCache(surface.DefaultShape), palette.Quantizer{Colors: cfg.Colors}, logger)
	sm := sketchmap.New(host, db, sketchmap.NewRegistry(), writer, logger, sketchmap.Options{
		World:    cfg.World,
		Workers:  cfg.Workers,
		Interval: cfg.Interval,
	})

	if _, err := sm.Load(db); err != nil {
		logger.Warn("Some mosaics could not be restored", "error", err)
	}

	return &session{
		sm:     sm,
		db:     db,
		logger: logger,
	}, nil
}

func decodeFile(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	return m, err
}

func create(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}
	file := c.Args().First()

	format, ok := sketchmap.FormatFromExtension(filepath.Ext(file))
	if c.IsSet("format") {
		format, ok = sketchmap.FormatFromExtension(c.String("format"))
	}
	if !ok {
		return cli.Exit(fmt.Sprintf("unsupported format for %q, use --format png or jpg", file), 1)
	}

	id := c.String("id")
	if id == "" {
		id = uuid.NewString()
	}

	m, err := decodeFile(file)
	if err != nil {
		return cli.Exit(err, 1)
	}

	a, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer a.Close()

	x, y := c.Int("x"), c.Int("y")
	mosaic, err := a.sm.Create(sketchmap.Scale(m, x, y), id, x, y, !c.Bool("private"), format)
	if err != nil {
		return cli.Exit(err, 1)
	}

	n, err := a.sm.Render(mosaic)
	if err != nil {
		return cli.Exit(err, 1)
	}
	a.logger.Info("Rendered mosaic", "mosaic", id, "tiles", n)

	fmt.Fprintln(c.App.Writer, id)

	return nil
}

func list(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer a.Close()

	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPANES\tPUBLIC\tFORMAT")
	records, err := a.db.Records()
	if err != nil {
		return cli.Exit(err, 1)
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%dx%d\t%t\t%s\n", r.ID, r.XPanes, r.YPanes, r.Public, r.Format.Extension())
	}

	return w.Flush()
}

func remove(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	a, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer a.Close()

	for _, id := range c.Args().Slice() {
		m, ok := a.sm.Registry().Lookup(id)
		if !ok {
			return cli.Exit(fmt.Sprintf("no mosaic %q", id), 1)
		}
		if err := a.sm.Delete(m); err != nil {
			return cli.Exit(err, 1)
		}
	}

	return nil
}

func render(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer a.Close()

	if err := a.sm.RenderAll(c.Context); err != nil {
		a.logger.Warn("Some tiles could not be rendered", "error", err)
	}

	out := c.String("out")
	if err := os.MkdirAll(out, 0755); err != nil {
		return cli.Exit(err, 1)
	}

	for _, mosaic := range a.sm.Registry().Mosaics() {
		x, y := mosaic.Panes()
		preview := image.NewRGBA(image.Rect(0, 0, x*grid.PaneSize, y*grid.PaneSize))

		for coord, sf := range mosaic.Surfaces() {
			v, ok := sf.(*memhost.MapView)
			if !ok {
				continue
			}
			m, err := v.Image()
			if err != nil {
				return cli.Exit(err, 1)
			}
			drawTile(preview, coord, m)
			if err := writePNG(filepath.Join(out, fmt.Sprintf("%s_%d_%d.png", mosaic.ID(), coord.X, coord.Y)), m); err != nil {
				return cli.Exit(err, 1)
			}
		}

		if err := writePNG(filepath.Join(out, mosaic.ID()+".png"), preview); err != nil {
			return cli.Exit(err, 1)
		}
		a.logger.Debug("Wrote preview", "mosaic", mosaic.ID())
	}

	return nil
}

func serve(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	super := newSupervisor("sketchmap")
	super.Add(a.sm)

	if err := super.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.Exit(err, 1)
	}

	return nil
}

func initConfig(c *cli.Context) error {
	cfg, err := readConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := config.Write(c.String("config"), cfg); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	godotenv.Load()

	app := cli.NewApp()

	app.Name = "sketchmap"
	app.Usage = "Render images across grids of map surfaces"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"SKETCHMAP_CONFIG"},
			Value:   defaultConfig,
			Usage:   "path to configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SKETCHMAP_DB"},
			Usage:   "path to database",
		},
		&cli.StringFlag{
			Name:    "world",
			EnvVars: []string{"SKETCHMAP_WORLD"},
			Usage:   "world to allocate surfaces in",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "create",
			Usage:     "Create a mosaic from an image",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "id",
					Usage: "mosaic identifier, generated if empty",
				},
				&cli.IntFlag{
					Name:  "x",
					Value: 1,
					Usage: "number of panes across",
				},
				&cli.IntFlag{
					Name:  "y",
					Value: 1,
					Usage: "number of panes down",
				},
				&cli.BoolFlag{
					Name:  "private",
					Usage: "mark the mosaic as private",
				},
				&cli.StringFlag{
					Name:  "format",
					Usage: "storage format, png or jpg; defaults to the file extension",
				},
			},
			Action: create,
		},
		{
			Name:   "list",
			Usage:  "List stored mosaics",
			Action: list,
		},
		{
			Name:      "delete",
			Usage:     "Delete mosaics",
			ArgsUsage: "ID...",
			Action:    remove,
		},
		{
			Name:  "render",
			Usage: "Render every mosaic and write the surfaces as PNG files",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Value: ".",
					Usage: "output directory",
				},
			},
			Action: render,
		},
		{
			Name:   "serve",
			Usage:  "Keep rendering every mosaic until interrupted",
			Action: serve,
		},
		{
			Name:  "config",
			Usage: "Manage the configuration file",
			Subcommands: []*cli.Command{
				{
					Name:   "init",
					Usage:  "Write the current configuration to the configuration file",
					Action: initConfig,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
