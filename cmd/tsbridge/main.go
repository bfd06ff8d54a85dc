package main

import (
	"fmt"
	"os"
	"strings"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		// No subcommand — default to extract
		return runExtract(os.Args[1:])
	}

	switch os.Args[1] {
	case "extract":
		return runExtract(os.Args[2:])
	case "dev":
		return runDev(os.Args[2:])
	case "--version", "-v":
		fmt.Println("tsbridge", version)
		return 0
	case "--help", "-h":
		printUsage()
		return 0
	default:
		// Check if first arg starts with - (it's a flag, not a subcommand)
		if strings.HasPrefix(os.Args[1], "-") {
			return runExtract(os.Args[1:])
		}
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println("tsbridge - extract type descriptors and value references for agent call sites")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tsbridge [flags]              Extract payloads (default)")
	fmt.Println("  tsbridge extract [flags]      Extract payloads")
	fmt.Println("  tsbridge dev [flags]          Watch mode (extract + re-extract on change)")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --version, -v          Print version and exit")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Extract Flags:")
	fmt.Println("  --project, -p <path>   Path to tsconfig.json (default: tsconfig.json)")
	fmt.Println("  --config <path>        Path to tsbridge.config.json or .yaml")
	fmt.Println("  --strict               Treat extraction warnings as errors")
	fmt.Println("  --quiet                Suppress extraction warnings")
	fmt.Println("  --clean                Clean output directory before extracting")
	fmt.Println("  --force                Ignore the extraction cache")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tsbridge")
	fmt.Println("  tsbridge extract")
	fmt.Println("  tsbridge extract --project tsconfig.build.json")
	fmt.Println("  tsbridge extract --config tsbridge.config.yaml --strict")
	fmt.Println()
}
