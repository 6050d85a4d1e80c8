package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile      = flag.String("log", "", "Also write logs to this file")
	flagManifest     = flag.String("manifest", "", "Write a YAML scene manifest to this path")
	flagProbe        = flag.Bool("probe", false, "Inspect textures referenced by materials")
	flagBakeDir      = flag.String("bake-dir", "", "Re-encode referenced textures to WebP in this directory")
	flagEncoding     = flag.String("encoding", "", "Charset of input files (e.g. euc-kr)")
	flagStrictNames  = flag.Bool("strict-names", false, "Fail on names longer than the name limit")
	flagDegenerateUV = flag.String("degenerate-uv", "", "Tangents for zero-area UV triangles: skip or keep")
	flagWriteConfig  = flag.String("write-config", "", "Write the effective config to this path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Inputs returns the positional arguments left after flag parsing.
func Inputs() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the -write-config destination, if any.
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagManifest != "" {
		cfg.Output.Manifest = *flagManifest
	}
	if *flagProbe {
		cfg.Textures.Probe = true
	}
	if *flagBakeDir != "" {
		cfg.Textures.BakeDir = *flagBakeDir
	}
	if *flagEncoding != "" {
		cfg.Convert.Encoding = *flagEncoding
	}
	if *flagStrictNames {
		cfg.Convert.StrictNames = true
	}
	if *flagDegenerateUV != "" {
		cfg.Convert.DegenerateUV = *flagDegenerateUV
	}
}
