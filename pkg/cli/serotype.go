package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/cavspipes/pipegen/pkg/generate"
	"github.com/cavspipes/pipegen/pkg/manifest"
)

var serotypeCommand = &cli.Command{
	Name:  "serotype",
	Usage: "Assemble and serotype Salmonella isolates",
	Description: `Assembles each sample with SPAdes, runs SeqSero2, MLST and SISTR, and
calls variants of the reads against the sample's own assembly.

Examples:
  pipegen serotype -s illu13.sa
  pipegen serotype -s illu13.sa -o serotyping -m serotyping.mk`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "make-file",
			Aliases: []string{"m"},
			Usage:   "Make file name",
			Value:   "run_salmonella_serotyping.mk",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Output directory (default: current directory)",
		},
		&cli.StringFlag{
			Name:     "sample-file",
			Aliases:  []string{"s"},
			Usage:    "Sample file",
			Required: true,
		},
	}, statusFlags...),
	Action: runSerotype,
}

func runSerotype(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	makeFile := c.String("make-file")
	sampleFile := c.String("sample-file")
	outputDir, err := absDir(c.String("output-dir"))
	if err != nil {
		return err
	}

	printParams(c.App.Writer, []param{
		{"make_file", makeFile},
		{"output_dir", outputDir},
		{"sample_file", sampleFile},
	})

	samples, err := manifest.ParseFile(sampleFile)
	if err != nil {
		return err
	}

	plan, err := generate.Serotype(generate.SerotypeOptions{
		Samples:      samples,
		OutputDir:    outputDir,
		Tools:        cfg,
		GraphOptions: graphOptions(cfg),
	})
	if err != nil {
		return err
	}

	if c.Bool("status") {
		return showStatus(c, "serotype", plan.Graph, makeFile)
	}
	return writePlan(c, cfg, plan, makeFile, 8)
}
