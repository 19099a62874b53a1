package generate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cavspipes/pipegen/pkg/core"
	"github.com/cavspipes/pipegen/pkg/pipeline"
	"github.com/cavspipes/pipegen/pkg/remote"
)

// RefSeqOptions configures the RefSeq database download pipeline.
type RefSeqOptions struct {
	Database     string
	Release      string
	Files        []string // Genomic FASTA files listed for the database
	BaseURL      string
	OutputDir    string // Files go to <OutputDir>/<Release>/<Database>
	Tools        Toolbox
	GraphOptions []pipeline.Option
}

// RefSeqDir returns the directory the database files are downloaded to.
func RefSeqDir(outputDir, release, database string) string {
	return filepath.Join(outputDir, release, database)
}

// RefSeq downloads every listed file, combines them into one gzipped FASTA
// and extracts its sequence headers.
func RefSeq(opts RefSeqOptions) (*Plan, error) {
	if !remote.IsDatabase(opts.Database) {
		return nil, core.ErrUnknownDatabase.WithDetails(map[string]interface{}{"database": opts.Database})
	}
	if opts.Release == "" {
		return nil, core.ErrRemoteListing.WithMessage("release number is required")
	}

	dir := RefSeqDir(opts.OutputDir, opts.Release, opts.Database)
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = remote.DefaultBaseURL
	}
	wget := opts.Tools.Tool("wget")

	plan := &Plan{
		Graph: pipeline.New(opts.GraphOptions...),
		Dirs:  []string{dir},
	}
	b := &builder{g: plan.Graph}

	downloads := make([]string, 0, len(opts.Files))
	for _, name := range opts.Files {
		file := filepath.Join(dir, name)
		b.add(file+".OK", nil, fmt.Sprintf("%s -c %s/%s/%s -P %s 2> %s.err",
			wget, baseURL, opts.Database, name, dir, file))
		downloads = append(downloads, file+".OK")
	}

	// The glob keeps the command short for divisions with thousands of files.
	combined := filepath.Join(dir, fmt.Sprintf("refseq.%s.%s.fasta.gz", opts.Release, opts.Database))
	b.add(combined+".OK", downloads, fmt.Sprintf(
		"set -o pipefail; cd %s; gunzip -c *.fna.gz | gzip > %s 2> %s.err", dir, combined, combined))

	headers := filepath.Join(dir, fmt.Sprintf("refseq.%s.%s.id.txt", opts.Release, opts.Database))
	b.add(headers+".OK", []string{combined + ".OK"}, fmt.Sprintf(
		`set -o pipefail; gunzip -c %s | grep -P "^>" > %s 2> %s.err`, combined, headers, headers))

	if b.err != nil {
		return nil, b.err
	}

	plan.Graph.SetCleanup(fmt.Sprintf("rm -f %s %s %s",
		filepath.Join(dir, "*.fna.gz"), filepath.Join(dir, "*.OK"), filepath.Join(dir, "*.err")))
	return plan, nil
}
