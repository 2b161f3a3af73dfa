// terrainbuild generates a chunked cliff terrain from layered noise and exports it as OBJ.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/marching-terrain/internal/config"
	"github.com/Faultbox/marching-terrain/internal/heightfield"
	"github.com/Faultbox/marching-terrain/internal/logger"
	"github.com/Faultbox/marching-terrain/internal/meshio"
	"github.com/Faultbox/marching-terrain/internal/terrain"
	"github.com/Faultbox/marching-terrain/pkg/math"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== terrainbuild ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("build failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	store := meshio.NewStore()
	tr, err := terrain.New(cfg.Terrain.Settings(), terrain.WithSink(store))
	if err != nil {
		return err
	}

	for cz := 0; cz < cfg.World.ChunksZ; cz++ {
		for cx := 0; cx < cfg.World.ChunksX; cx++ {
			tr.AddChunk(cx, cz)
		}
	}

	src, err := heightSource(cfg)
	if err != nil {
		return err
	}
	written := 0
	for _, coord := range tr.Chunks() {
		written += tr.GenerateHeightmap(coord, src)
	}
	logger.Info("heightmap generated",
		zap.Int("chunks", tr.Len()),
		zap.Int("samplesWritten", written),
		zap.Int64("seed", cfg.Noise.Seed),
		zap.String("table", cfg.World.HeightTable))

	painted := paintHighlands(tr, cfg.World.HighlandHeight, math.ColorFromChannels(cfg.World.HighlandPaint))
	logger.Debug("highlands painted", zap.Int("samplesWritten", painted))

	var triangles, skipped int
	for _, coord := range tr.Chunks() {
		c, _ := tr.Chunk(coord.X, coord.Z)
		triangles += c.Mesh().TriangleCount()
		skipped += c.Skipped()
	}
	if skipped > 0 {
		logger.Warn("cells left without geometry", zap.Int("cells", skipped))
	}

	err = meshio.WriteOBJFile(cfg.Export.Path, store.Collect(tr),
		meshio.WithScale(cfg.Export.Scale),
		meshio.WithYaw(cfg.Export.YawDegrees))
	if err != nil {
		return fmt.Errorf("exporting %s: %w", cfg.Export.Path, err)
	}

	logger.Info("terrain exported",
		zap.String("path", cfg.Export.Path),
		zap.Int("triangles", triangles))

	if cfg.Export.HeightTable != "" {
		if err := bakeHeights(tr, cfg); err != nil {
			return err
		}
	}
	return nil
}

func heightSource(cfg *config.Config) (terrain.HeightSource, error) {
	if cfg.World.HeightTable == "" {
		return heightfield.NewPerlin(cfg.Noise), nil
	}
	tbl, err := heightfield.ReadTableFile(cfg.World.HeightTable)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.World.HeightTable, err)
	}
	logger.Debug("height table loaded",
		zap.Int("width", tbl.Width),
		zap.Int("depth", tbl.Depth),
		zap.Float32("spacing", tbl.Spacing))
	return tbl, nil
}

// bakeHeights saves the sample heights of the whole world as a height table.
func bakeHeights(tr *terrain.Terrain, cfg *config.Config) error {
	s := tr.Settings()
	if s.CellSize.X != s.CellSize.Y {
		logger.Warn("height table needs square cells, skipping bake",
			zap.Float32("cellX", s.CellSize.X),
			zap.Float32("cellZ", s.CellSize.Y))
		return nil
	}

	cx, cz := s.Dimensions.Cells()
	width := cfg.World.ChunksX*cx + 1
	depth := cfg.World.ChunksZ*cz + 1
	sample := terrain.HeightFunc(func(x, z float32) float32 {
		h, _ := tr.HeightAtPosition(x, z)
		return h
	})

	tbl := heightfield.Bake(sample, width, depth, s.CellSize.X)
	if err := heightfield.WriteTableFile(cfg.Export.HeightTable, tbl); err != nil {
		return fmt.Errorf("baking %s: %w", cfg.Export.HeightTable, err)
	}
	logger.Info("height table baked",
		zap.String("path", cfg.Export.HeightTable),
		zap.Int("width", width),
		zap.Int("depth", depth))
	return nil
}

// paintHighlands paints every sample at or above minHeight.
func paintHighlands(tr *terrain.Terrain, minHeight float32, paint math.Color) int {
	var edits []terrain.ColorEdit
	for _, coord := range tr.Chunks() {
		c, _ := tr.Chunk(coord.X, coord.Z)
		g := c.Samples()
		for z := 0; z < g.Depth(); z++ {
			for x := 0; x < g.Width(); x++ {
				if g.Height(x, z) >= minHeight {
					edits = append(edits, terrain.ColorEdit{
						SampleRef: terrain.SampleRef{Chunk: coord, X: x, Z: z},
						Color:     paint,
					})
				}
			}
		}
	}
	return tr.SetColors(edits)
}
