package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wesm/chatmd/internal/analyze"
	"github.com/wesm/chatmd/internal/config"
	"github.com/wesm/chatmd/internal/convert"
	"github.com/wesm/chatmd/internal/watch"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "convert":
			runConvert(os.Args[2:])
			return
		case "analyze":
			runAnalyze(os.Args[2:])
			return
		case "watch":
			runWatch(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("chatmd %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runConvert(os.Args[1:])
}

func printUsage() {
	fmt.Printf(`chatmd %s - convert chat JSON exports to Markdown transcripts

Reads a JSON export of chat conversations of unknown shape, locates the
conversation records heuristically, and writes one Markdown file per
conversation with collision-free filenames.

Usage:
  chatmd [flags]           Analyze then convert (default command)
  chatmd convert [flags]   Analyze then convert (explicit)
  chatmd analyze [flags]   Print the structure report only
  chatmd watch [flags]     Re-convert whenever the input file changes
  chatmd version           Show version information
  chatmd help              Show this help

Convert flags:
  -input string       Path to the JSON export file (default "conversations.json")
  -output string      Directory for Markdown output (default "markdown_transcripts")
  -no-analyze         Skip the structure analysis report

Watch flags:
  -input string       Path to the JSON export file
  -output string      Directory for Markdown output
  -debounce duration  Delay before re-converting after a change (default 500ms)

Environment variables:
  CHATMD_INPUT        Path to the JSON export file
  CHATMD_OUTPUT_DIR   Directory for Markdown output
  CHATMD_CONFIG_DIR   Config directory (default ~/.chatmd)
`, version)
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("chatmd", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: chatmd [convert] [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	config.RegisterConvertFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if !cfg.NoAnalyze {
		fmt.Println("Analyzing JSON structure...")
		fmt.Println()
		// Analysis failures are diagnostic only and never block
		// the conversion run.
		_ = analyze.Run(cfg.InputPath, os.Stdout)
		fmt.Println()
		fmt.Println("Starting conversion...")
		fmt.Println()
	}

	opts := convert.Options{
		InputPath: cfg.InputPath,
		OutputDir: cfg.OutputDir,
	}
	if _, err := convert.Run(opts, os.Stdout); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.String("input", "conversations.json", "Path to the JSON export file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if err := analyze.Run(cfg.InputPath, os.Stdout); err != nil {
		os.Exit(1)
	}
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.String("input", "conversations.json", "Path to the JSON export file")
	fs.String("output", "markdown_transcripts", "Directory for Markdown output")
	fs.Duration("debounce", 0, "Delay before re-converting after a change")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	opts := convert.Options{
		InputPath: cfg.InputPath,
		OutputDir: cfg.OutputDir,
	}
	// The initial run may fail on a missing or malformed input; the
	// watcher stays up so a corrected file triggers a retry.
	_, _ = convert.Run(opts, os.Stdout)

	watcher, err := watch.New(cfg.InputPath, cfg.Debounce, func() {
		fmt.Printf("\n%s changed, reconverting...\n\n", cfg.InputPath)
		_, _ = convert.Run(opts, os.Stdout)
	})
	if err != nil {
		log.Fatalf("starting watcher: %v", err)
	}
	watcher.Start()
	defer watcher.Stop()

	fmt.Printf("Watching %s for changes (Ctrl-C to stop)\n", cfg.InputPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
