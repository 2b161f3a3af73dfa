package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagSeed      = flag.Int64("seed", 0, "Noise seed (0 = from config)")
	flagChunksX   = flag.Int("chunks-x", 0, "Number of chunks along X")
	flagChunksZ   = flag.Int("chunks-z", 0, "Number of chunks along Z")
	flagThreshold = flag.Float64("threshold", 0, "Cliff merge threshold")
	flagHiFi      = flag.Bool("hifi", false, "Build flat cells as four-triangle fans")
	flagOut       = flag.String("out", "", "Output OBJ path (.obj or .obj.gz)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed != 0 {
		cfg.Noise.Seed = *flagSeed
	}
	if *flagChunksX > 0 {
		cfg.World.ChunksX = *flagChunksX
	}
	if *flagChunksZ > 0 {
		cfg.World.ChunksZ = *flagChunksZ
	}
	if *flagThreshold > 0 {
		cfg.Terrain.MergeThreshold = float32(*flagThreshold)
	}
	if *flagHiFi {
		cfg.Terrain.HighFidelityFloor = true
	}
	if *flagOut != "" {
		cfg.Export.Path = *flagOut
	}
}
