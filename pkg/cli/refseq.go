package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cavspipes/pipegen/pkg/core"
	"github.com/cavspipes/pipegen/pkg/generate"
	"github.com/cavspipes/pipegen/pkg/remote"
)

// refseqJobs is the most concurrent downloads NCBI tolerates.
const refseqJobs = 8

var refseqCommand = &cli.Command{
	Name:  "refseq",
	Usage: "Download a RefSeq release database",
	Description: `Lists the genomic FASTA files of a RefSeq division and writes a make
file that downloads them into <output-dir>/<release>/<database>, combines
them and extracts the sequence headers.

database: archaea|bacteria|fungi|invertebrate|mitochondrion|plant|plasmid|
          protozoa|plastid|viral|vertebrate_mammalian|vertebrate_other

Examples:
  pipegen refseq -d viral
  pipegen refseq -d bacteria -o /db/refseq -m download_bacteria.mk`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "make-file",
			Aliases: []string{"m"},
			Usage:   "Make file name (default: download_refseq_<database>_db.mk)",
		},
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "Database to download",
			Value:   "viral",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Output directory (default: current directory)",
		},
	},
	Action: runRefseq,
}

func runRefseq(c *cli.Context) error {
	database := c.String("database")
	if !remote.IsDatabase(database) {
		return core.ErrUnknownDatabase.WithDetails(map[string]interface{}{"database": database})
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	makeFile := c.String("make-file")
	if makeFile == "" {
		makeFile = fmt.Sprintf("download_refseq_%s_db.mk", database)
	}
	outputDir, err := absDir(c.String("output-dir"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	printParams(w, []param{
		{"make_file", makeFile},
		{"database", database},
		{"output_directory", outputDir},
	})
	fmt.Fprintf(w, "\nPlease invoke the pipeline with not more than %d jobs running concurrently due to NCBI restrictions\n", refseqJobs)

	client := remote.NewClient(cfg.RefseqURL)
	release, err := client.ReleaseNumber(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nDatabase will be downloaded to %s\n", generate.RefSeqDir(outputDir, release, database))

	fmt.Fprintln(w, "Getting directory listings")
	files, err := client.ListGenomicFiles(c.Context, database)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Downloading %d files.\n", len(files))

	plan, err := generate.RefSeq(generate.RefSeqOptions{
		Database:     database,
		Release:      release,
		Files:        files,
		BaseURL:      client.BaseURL,
		OutputDir:    outputDir,
		Tools:        cfg,
		GraphOptions: graphOptions(cfg),
	})
	if err != nil {
		return err
	}
	return writePlan(c, cfg, plan, makeFile, refseqJobs)
}
