package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mepla/Enchilada/internal/bootstrap"
	"github.com/mepla/Enchilada/internal/config"
	"github.com/mepla/Enchilada/internal/policy"
	"github.com/mepla/Enchilada/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "server":
		if err := bootstrap.Run(config.Load()); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	case "check-policy":
		if len(args) != 2 {
			printUsage()
			os.Exit(1)
		}
		f, err := policy.Load(args[1])
		if err != nil {
			log.Fatalf("Invalid policy file: %v", err)
		}
		fmt.Printf("%s: %d clients, %d scopes\n", args[1], len(f.Clients), len(f.Scopes))
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Bearer token issuance and scope authorization server")
	fmt.Println("\nCommands:")
	fmt.Println("  server              Start the server")
	fmt.Println("  check-policy FILE   Validate a policy file without applying it")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}
