package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagInput  = flag.String("input", "", "Folder scanned for input assets")
	flagOutput = flag.String("output", "", "Destination root for per-asset outputs")
	flagTarget = flag.Int("target", 0, "Decimation vertex budget")
	flagAngle  = flag.Float64("angle", -1, "Camera angle in degrees for the render")
	flagName   = flag.String("name", "", "Fixed literal for the JSON name field")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagInput != "" {
		cfg.InputFolder = *flagInput
	}
	if *flagOutput != "" {
		cfg.OutputFolder = *flagOutput
	}
	if *flagTarget > 0 {
		cfg.TargetVertexCount = *flagTarget
	}
	if *flagAngle >= 0 {
		cfg.Render.Angle = *flagAngle
	}
	if *flagName != "" {
		cfg.Export.Name = *flagName
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
}
