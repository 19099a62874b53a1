package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cavspipes/pipegen/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check sample files without generating a pipeline",
	ArgsUsage: "[sample-file-or-folder]...",
	Description: `Reports every problem in the given sample files: wrong field counts,
missing read files, and sample ids repeated within or across files.

Examples:
  pipegen validate -s ilm23.sa
  pipegen validate manifests/ --fastq-dir /net/illumina/ilm23/Fastq`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "sample-file",
			Aliases: []string{"s"},
			Usage:   "Sample file or folder of .sa files (repeatable)",
		},
		&cli.StringFlag{
			Name:  "fastq-dir",
			Usage: "Also check that every read file exists in this directory",
		},
	},
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	paths := append(c.StringSlice("sample-file"), c.Args().Slice()...)
	if len(paths) == 0 {
		return fmt.Errorf("at least one sample file is required")
	}

	var opts []validator.Option
	if dir := c.String("fastq-dir"); dir != "" {
		opts = append(opts, validator.WithFastqDir(dir))
	}

	result := validator.New(opts...).ValidateManifests(paths...)

	w := c.App.Writer
	for _, err := range result.Errors {
		fmt.Fprintf(w, "  %s✗%s %v\n", color(colorRed), color(colorReset), err)
	}
	if !result.IsValid() {
		return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
	}

	fmt.Fprintf(w, "  %s✓%s %d file(s), %d sample(s) valid\n",
		color(colorGreen), color(colorReset), len(result.Files), result.Samples)
	return nil
}
