// Package cli provides the command-line interface for pipegen.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cavspipes/pipegen/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to pipegen.yaml (default: <home>/pipegen.yaml)",
		EnvVars: []string{"PIPEGEN_CONFIG"},
	},
	&cli.StringFlag{
		Name:  "env-file",
		Usage: "Environment file loaded before PIPEGEN_* overrides",
		Value: ".env",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"PIPEGEN_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Log file (default: pipegen.log next to the make file)",
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the pipegen application writing its output to out.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "pipegen",
		Usage:   "Generate make files for CAVS sequencing pipelines",
		Version: Version,
		Description: `pipegen writes GNU make files that run bioinformatics pipelines as
chains of tool invocations. Every step touches a .OK sentinel when it
succeeds, so rerunning make only redoes missing or stale steps.

Examples:
  pipegen ilm-qc -r ilm23 -i /net/illumina/ilm23 -s ilm23.sa
  pipegen serotype -s illu13.sa -o serotyping
  pipegen refseq -d viral -o /db/refseq
  pipegen validate -s ilm23.sa -s ilm24.sa`,
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags:     GlobalFlags,
		Before: func(c *cli.Context) error {
			colorsEnabled = terminalColors && !c.Bool("no-ansi")
			logger.SetVerbose(c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			ilmQCCommand,
			serotypeCommand,
			refseqCommand,
			validateCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
