// Package main runs the infinite media canvas.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/gekko3d/infinity"
	"github.com/gekko3d/infinity/chunk"
	"github.com/gekko3d/infinity/texture"
)

const (
	flagConfig   = "config"
	flagManifest = "manifest"
	flagHeadless = "headless"
	flagFrames   = "frames"
)

func main() {
	app := &cli.App{
		Name:  "infinity",
		Usage: "browse a media collection on an endless 3D canvas",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "YAML config file; missing values keep their defaults",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "open the canvas",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagManifest, Aliases: []string{"m"}, Required: true, Usage: "JSON media manifest"},
					&cli.BoolFlag{Name: flagHeadless, Usage: "run without a window"},
					&cli.Uint64Flag{Name: flagFrames, Usage: "stop after this many frames (0 runs until closed)"},
				},
				Action: runAction,
			},
			{
				Name:      "preload",
				Usage:     "fetch and decode every texture of a manifest",
				ArgsUsage: "<manifest>",
				Action:    preloadAction,
			},
			{
				Name:      "chunk",
				Usage:     "print the planes generated for one chunk",
				ArgsUsage: "<cx> <cy> <cz>",
				Action:    chunkAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runAction(c *cli.Context) error {
	cfg, err := infinity.LoadConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	media, err := infinity.LoadManifest(c.String(flagManifest))
	if err != nil {
		return err
	}

	frames := c.Uint64(flagFrames)
	var extra []infinity.Module
	if c.Bool(flagHeadless) {
		if frames == 0 {
			return errors.New("--headless needs --frames")
		}
	} else {
		extra = append(extra, infinity.WindowModule{
			Width:      cfg.Window.Width,
			Height:     cfg.Window.Height,
			Title:      cfg.Window.Title,
			CloseState: infinity.StateClosed,
		})
	}
	extra = append(extra, infinity.FrameLimitModule{Frames: frames, CloseState: infinity.StateClosed})

	app := infinity.NewCanvasApp(cfg, media, nil, infinity.NopRenderer{}, extra...)
	app.Run()

	if grid := infinity.Resource[infinity.ChunkGrid](app); grid != nil {
		hits, misses := grid.Cache.Stats()
		app.Logger().Infof("done: %d chunk commits, chunk cache %d hits / %d misses", grid.Commits, hits, misses)
	}
	if l := infinity.Resource[infinity.DefaultLogger](app); l != nil {
		_ = l.Sync()
	}
	return nil
}

func preloadAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("preload needs exactly one manifest")
	}
	cfg, err := infinity.LoadConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	media, err := infinity.LoadManifest(c.Args().First())
	if err != nil {
		return err
	}

	logger := infinity.NewDefaultLogger("preload", cfg.Log.Debug)
	defer logger.Sync()
	opts := cfg.TextureOptions()
	opts.Logger = logger
	opts.OnProgress = func(percent int) { logger.Infof("%d%%", percent) }
	m := texture.NewManager(infinity.DefaultLoader(cfg.Textures), opts)
	defer m.Close()

	if err := m.Preload(context.Background(), media); err != nil {
		return errors.Wrap(err, "preload")
	}
	st := m.Stats()
	fmt.Printf("%d textures, %d failed\n", st.Resolved, st.Failed)
	return nil
}

func chunkAction(c *cli.Context) error {
	if c.NArg() != 3 {
		return errors.New("chunk needs three integer coordinates")
	}
	var xyz [3]int
	for i := range xyz {
		v, err := strconv.Atoi(c.Args().Get(i))
		if err != nil {
			return errors.Wrapf(err, "coordinate %d", i)
		}
		xyz[i] = v
	}
	cfg, err := infinity.LoadConfig(c.String(flagConfig))
	if err != nil {
		return err
	}

	coord := chunk.Coord{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	for _, p := range cfg.Generator().Generate(coord) {
		fmt.Printf("%s  pos=(%.2f, %.2f, %.2f)  scale=%.2f  media=%d\n",
			p.ID, p.Position.X(), p.Position.Y(), p.Position.Z(), p.Scale.Y(), p.MediaIndex)
	}
	return nil
}
