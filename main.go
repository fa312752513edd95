package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"intbridge/errors"
	"intbridge/logging"
	"intbridge/marshal"
	"intbridge/platform"
	"intbridge/repl"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		eval        = flag.String("eval", "", "Execute one command and exit")
		profile     = flag.String("profile", "", "Platform profile (lp64, llp64, ilp32, auto)")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("intbridge %s\n", repl.Version)
		if *verbose {
			fmt.Printf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Printf("Detected profile: %s\n", platform.DetectProfile())
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := LoadConfig(resolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *profile != "" {
		cfg.Platform.Profile = *profile
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	os.Exit(run(cfg, *eval, flag.Args()))
}

// run wires the logger, platform table and REPL together and returns the
// process exit code.
func run(cfg *Config, eval string, scripts []string) int {
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Close() }()

	prof, err := platform.ParseProfile(cfg.Platform.Profile)
	if err != nil {
		logger.ErrorConversion(err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.Translate(err))
		return 1
	}
	table, err := platform.Init(prof)
	if err != nil {
		logger.ErrorConversion(err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.Translate(err))
		return 1
	}
	logger.Debug("platform resolved",
		logging.StringField("profile", string(table.Profile)),
		logging.BoolField("little_endian", table.LittleEndian))

	replConfig := repl.REPLConfig{
		Converter:    marshal.New(marshal.WithTable(table), marshal.WithLogger(logger)),
		Logger:       logger,
		Prompt:       cfg.REPL.Prompt,
		HistoryFile:  expandHome(cfg.REPL.HistoryFile),
		HistorySize:  cfg.REPL.HistorySize,
		LuaTimeout:   cfg.LuaTimeout(),
		ShowWelcome:  cfg.REPL.ShowWelcome,
		EnableColors: cfg.REPL.EnableColors,
	}

	switch {
	case eval != "":
		return runEval(replConfig, eval)
	case len(scripts) > 0:
		return runScripts(replConfig, scripts)
	}

	r, err := repl.NewREPLWithConfig(replConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := r.Run(); err != nil {
		return 1
	}
	return 0
}

func runEval(config repl.REPLConfig, line string) int {
	r, err := repl.NewREPLWithConfig(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = r.Close() }()

	result, err := r.ExecuteLine(line)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Translate(err))
		return 1
	}
	if result != "" {
		fmt.Println(result)
	}
	return 0
}

// runScripts feeds each file through the REPL in piped mode, stopping at
// the first failing line.
func runScripts(config repl.REPLConfig, paths []string) int {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}

		config.Input = f
		r, err := repl.NewREPLWithConfig(config)
		if err != nil {
			_ = f.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		err = r.Run()
		_ = f.Close()
		if err != nil {
			return 1
		}
	}
	return 0
}

// resolveConfigPath falls back to INTBRIDGE_CONFIG and then the default
// locations when no path was given
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("INTBRIDGE_CONFIG"); env != "" {
		return env
	}

	home, _ := os.UserHomeDir()
	for _, candidate := range []string{
		filepath.Join(home, ".intbridge", "config.yaml"),
		"./intbridge.yaml",
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// printHelp displays help information
func printHelp() {
	fmt.Println("intbridge - native integer marshalling shell")
	fmt.Println()
	fmt.Println("Usage: intbridge [options] [script ...]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>       Path to configuration file")
	fmt.Println("  --eval <command>      Execute one command and exit")
	fmt.Println("  --profile <name>      Platform profile: lp64, llp64, ilp32 or auto")
	fmt.Println("  --verbose             Enable debug logging")
	fmt.Println("  --version             Show version information")
	fmt.Println("  --help                Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  intbridge --eval 'as long 0x7fffffffffffffff'")
	fmt.Println("  intbridge --profile llp64 --eval 'limits'")
	fmt.Println("  intbridge checks.ib")
	fmt.Println()
	fmt.Println("Configuration is read from --config, then INTBRIDGE_CONFIG, then")
	fmt.Println("~/.intbridge/config.yaml and ./intbridge.yaml.")
}
