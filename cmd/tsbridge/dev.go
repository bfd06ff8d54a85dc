package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tsbridge/tsbridge/internal/runner"
	"github.com/tsbridge/tsbridge/internal/watcher"
)

// runDev implements "tsbridge dev": extract once, then watch the source
// tree and re-extract on change. With --exec, a companion process (usually
// the developer's agent host) is started and restarted after each
// successful re-extraction so it picks up fresh payloads.
func runDev(args []string) int {
	devFlags := flag.NewFlagSet("dev", flag.ExitOnError)

	var (
		configPath          string
		tsconfigPath        string
		execCmd             string
		strict              bool
		quiet               bool
		preserveWatchOutput bool
	)

	devFlags.StringVar(&configPath, "config", "", "Path to tsbridge config file")
	devFlags.StringVar(&tsconfigPath, "project", "", "Path to tsconfig.json")
	devFlags.StringVar(&tsconfigPath, "p", "", "Path to tsconfig.json (shorthand)")
	devFlags.StringVar(&execCmd, "exec", "", "Command to (re)start after each successful extraction")
	devFlags.BoolVar(&strict, "strict", false, "Treat extraction warnings as errors")
	devFlags.BoolVar(&quiet, "quiet", false, "Suppress extraction warnings")
	devFlags.BoolVar(&preserveWatchOutput, "preserveWatchOutput", false, "Don't clear console between extractions")

	devFlags.Usage = func() {
		fmt.Println("Usage: tsbridge dev [flags]")
		fmt.Println()
		fmt.Println("Flags:")
		devFlags.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  tsbridge dev")
		fmt.Println("  tsbridge dev --exec 'node dist/agent-host.js'")
		fmt.Println("  tsbridge dev --config tsbridge.config.yaml --strict")
	}

	devFlags.Parse(args)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not get working directory: %v\n", err)
		return 1
	}

	cfg, _, _, err := loadConfig(configPath, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	extractArgs := []string{}
	if configPath != "" {
		extractArgs = append(extractArgs, "--config", configPath)
	}
	if tsconfigPath != "" {
		extractArgs = append(extractArgs, "--project", tsconfigPath)
	}
	if strict {
		extractArgs = append(extractArgs, "--strict")
	}
	if quiet {
		extractArgs = append(extractArgs, "--quiet")
	}

	fmt.Fprintln(os.Stderr, "performing initial extraction...")
	result := runExtract(extractArgs)
	if result != 0 {
		fmt.Fprintln(os.Stderr, "initial extraction failed, watching for changes...")
	}

	var proc *runner.Runner
	if execCmd != "" {
		proc = runner.New("sh", []string{"-c", execCmd}, cwd)
		if result == 0 {
			fmt.Fprintf(os.Stderr, "starting: %s\n", execCmd)
			if err := proc.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "error starting process: %v\n", err)
			}
		}
	}

	reExtract := func(events []watcher.Event) {
		if !preserveWatchOutput {
			// Clear terminal (like tsc --watch)
			fmt.Fprint(os.Stderr, "\033[2J\033[H")
		}

		fmt.Fprintf(os.Stderr, "\ndetected %d change(s), re-extracting...\n", len(events))

		if runExtract(extractArgs) != 0 {
			fmt.Fprintln(os.Stderr, "extraction failed, waiting for changes...")
			return
		}

		if proc != nil {
			fmt.Fprintln(os.Stderr, "restarting...")
			if err := proc.Restart(); err != nil {
				fmt.Fprintf(os.Stderr, "error restarting: %v\n", err)
			}
		}
	}

	w := watcher.New(
		watchRoots(cfg.Extract.Include, cwd),
		[]string{".ts", ".tsx", ".mts", ".cts"},
		100*time.Millisecond,
		reExtract,
	)

	// Ensure the companion process is cleaned up on panic or unexpected
	// exit. This defer runs LIFO after signal handling, so panics don't
	// leak orphan processes.
	if proc != nil {
		defer func() {
			proc.Stop()
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "tsbridge dev: panic: %v\n", r)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nshutting down...")
		w.Stop()
		if proc != nil {
			proc.Stop()
		}
	}()

	fmt.Fprintln(os.Stderr, "watching for changes...")
	if err := w.Watch(); err != nil {
		fmt.Fprintf(os.Stderr, "error: watch: %v\n", err)
		return 1
	}

	return 0
}

// watchRoots derives the directories to watch from the include globs: the
// static prefix before the first wildcard, resolved against cwd. Patterns
// with no usable prefix fall back to cwd itself.
func watchRoots(include []string, cwd string) []string {
	seen := make(map[string]bool)
	var roots []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			roots = append(roots, dir)
		}
	}

	for _, pattern := range include {
		prefix := pattern
		if i := strings.IndexAny(prefix, "*?["); i >= 0 {
			prefix = prefix[:i]
		}
		prefix = filepath.Dir(filepath.FromSlash(prefix + "x")) // keep trailing dirs, drop partial names
		if prefix == "." || prefix == "" {
			add(cwd)
			continue
		}
		dir := prefix
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			add(dir)
		} else {
			add(cwd)
		}
	}

	if len(roots) == 0 {
		add(cwd)
	}
	return roots
}
