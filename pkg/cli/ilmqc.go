package cli

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/cavspipes/pipegen/pkg/generate"
	"github.com/cavspipes/pipegen/pkg/manifest"
)

var ilmQCCommand = &cli.Command{
	Name:  "ilm-qc",
	Usage: "Deploy Illumina fastq files and run QC",
	Description: `Copies each sample's reads out of the Illumina run directory into
<working-dir>/<run-id>, then runs fastqc, kraken2 and krona per sample and
multiqc over the run.

Examples:
  pipegen ilm-qc -r ilm23 -i illumina_raw -s ilm23.sa
  pipegen ilm-qc -r ilm23 -i illumina_raw -s ilm23.sa --status`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "make-file",
			Aliases: []string{"m"},
			Usage:   "Make file name",
			Value:   "ilm_deploy_and_qc.mk",
		},
		&cli.StringFlag{
			Name:     "run-id",
			Aliases:  []string{"r"},
			Usage:    "Run ID, e.g. ilm23",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "illumina-dir",
			Aliases:  []string{"i"},
			Usage:    "Illumina run directory containing a Fastq directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "working-dir",
			Aliases: []string{"w"},
			Usage:   "Working directory (default: current directory)",
		},
		&cli.StringFlag{
			Name:     "sample-file",
			Aliases:  []string{"s"},
			Usage:    "Sample file",
			Required: true,
		},
	}, statusFlags...),
	Action: runIlmQC,
}

func runIlmQC(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	makeFile := c.String("make-file")
	runID := c.String("run-id")
	sampleFile := c.String("sample-file")

	illuminaDir, err := filepath.Abs(c.String("illumina-dir"))
	if err != nil {
		return err
	}
	workingDir, err := absDir(c.String("working-dir"))
	if err != nil {
		return err
	}
	fastqDir, err := generate.FindFastqDir(illuminaDir)
	if err != nil {
		return err
	}

	printParams(c.App.Writer, []param{
		{"make_file", makeFile},
		{"run_dir", runID},
		{"illumina_dir", illuminaDir},
		{"working_dir", workingDir},
		{"sample_file", sampleFile},
		{"dest_dir", filepath.Join(workingDir, runID)},
		{"fastq_path", fastqDir},
	})

	samples, err := manifest.ParseFile(sampleFile)
	if err != nil {
		return err
	}

	plan, err := generate.IlluminaQC(generate.IlluminaQCOptions{
		Run:          manifest.NewRun(runID, samples),
		FastqDir:     fastqDir,
		WorkingDir:   workingDir,
		Kraken2DB:    cfg.Kraken2DB,
		Tools:        cfg,
		GraphOptions: graphOptions(cfg),
	})
	if err != nil {
		return err
	}

	if c.Bool("status") {
		return showStatus(c, "ilm-qc", plan.Graph, makeFile)
	}
	fmt.Fprintf(c.App.Writer, "\n%d samples in run %s\n", len(samples), runID)
	return writePlan(c, cfg, plan, makeFile, 8)
}
