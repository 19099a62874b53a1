package generate

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cavspipes/pipegen/pkg/manifest"
	"github.com/cavspipes/pipegen/pkg/pipeline"
)

// FastqDirName is the directory the Illumina instrument writes reads into.
const FastqDirName = "Fastq"

// kraken2Report reshapes kraken2 output into
// count, taxon count, name, taxid, rank and rank count columns.
const kraken2Report = `| perl -lane '{@F=split("\t"); $$F[2]=~/(.+) \(taxid (\d+)\)/; print "$$F[0]\t$$F[1]\t$$1\t$$2\t$$F[3]\t$$F[4]"}'`

// IlluminaQCOptions configures the Illumina deploy and QC pipeline.
type IlluminaQCOptions struct {
	Run          manifest.Run
	FastqDir     string // Directory holding the instrument's fastq files
	WorkingDir   string
	Kraken2DB    string
	Tools        Toolbox
	GraphOptions []pipeline.Option
}

// FindFastqDir searches illuminaDir recursively for a directory named Fastq.
// When several exist, the last one visited in lexical walk order wins.
func FindFastqDir(illuminaDir string) (string, error) {
	found := ""
	err := filepath.WalkDir(illuminaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == FastqDirName && path != illuminaDir {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", illuminaDir, err)
	}
	if found == "" {
		return "", fmt.Errorf("no %s directory under %s", FastqDirName, illuminaDir)
	}
	return found, nil
}

// IlluminaQC copies each sample's reads into the run directory, then runs
// fastqc, kraken2 and krona per sample and multiqc and krona over the run.
//
// kraken2 loads a large database, so each sample's classification waits for
// the previous sample's.
func IlluminaQC(opts IlluminaQCOptions) (*Plan, error) {
	run := opts.Run
	logDir := filepath.Join(opts.WorkingDir, "log")
	destDir := filepath.Join(opts.WorkingDir, run.ID)
	analysisDir := filepath.Join(destDir, "analysis")

	fastqc := opts.Tools.Tool("fastqc")
	kraken2 := opts.Tools.Tool("kraken2")
	krona := opts.Tools.Tool("krona")
	multiqc := opts.Tools.Tool("multiqc")

	plan := &Plan{
		Graph: pipeline.New(opts.GraphOptions...),
		Dirs:  []string{logDir, analysisDir},
	}
	b := &builder{g: plan.Graph}

	var (
		fastqcOKs  []string
		kraken2OKs []string
		reports    []string
		prev       []string // previous sample's copy and kraken2 sentinels
	)

	for _, s := range run.Samples {
		name := fmt.Sprintf("%d_%s", s.Index, s.ID)
		sampleDir := filepath.Join(analysisDir, name)
		fastqcDir := filepath.Join(sampleDir, "fastqc_result")
		kraken2Dir := filepath.Join(sampleDir, "kraken2_result")
		plan.Dirs = append(plan.Dirs, sampleDir, kraken2Dir, fastqcDir)

		// copy reads
		prefix := fmt.Sprintf("%s_%s", run.Index, name)
		fastq1 := filepath.Join(destDir, prefix+"_R1.fastq.gz")
		fastq2 := filepath.Join(destDir, prefix+"_R2.fastq.gz")
		copy1 := filepath.Join(logDir, prefix+"_R1.fastq.gz.OK")
		copy2 := filepath.Join(logDir, prefix+"_R2.fastq.gz.OK")
		b.add(copy1, nil, fmt.Sprintf("cp %s %s", filepath.Join(opts.FastqDir, s.FastQ1), fastq1))
		b.add(copy2, nil, fmt.Sprintf("cp %s %s", filepath.Join(opts.FastqDir, s.FastQ2), fastq2))

		// fastqc
		for i, read := range []struct{ fastq, dep string }{{fastq1, copy1}, {fastq2, copy2}} {
			base := filepath.Join(logDir, fmt.Sprintf("%s_fastqc%d", name, i+1))
			b.add(base+".OK", []string{read.dep},
				fmt.Sprintf("%s %s -o %s > %s.log 2> %s.err", fastqc, read.fastq, fastqcDir, base, base))
			fastqcOKs = append(fastqcOKs, base+".OK")
		}

		// kraken2
		reportFile := filepath.Join(kraken2Dir, "report.txt")
		reportLog := filepath.Join(kraken2Dir, "report.log")
		runLog := filepath.Join(kraken2Dir, "run.log")
		kraken2OK := filepath.Join(logDir, name+".kraken2.OK")
		deps := []string{copy1, copy2}
		if prev != nil {
			deps = append(deps, prev...)
		}
		b.add(kraken2OK, deps, fmt.Sprintf(
			"set -o pipefail; %s --db %s --paired %s %s --use-names --report %s %s > %s 2> %s",
			kraken2, opts.Kraken2DB, fastq1, fastq2, reportFile, kraken2Report, reportLog, runLog))
		kraken2OKs = append(kraken2OKs, kraken2OK)
		reports = append(reports, reportLog)
		prev = []string{copy1, copy2, kraken2OK}

		// krona radial tree
		kronaBase := filepath.Join(logDir, name+".krona_radial_tree")
		b.add(filepath.Join(logDir, name+".kraken2.krona_radial_tree.OK"), []string{kraken2OK},
			fmt.Sprintf("%s -q 2 -t 4 %s -o %s > %s.log 2> %s.err",
				krona, reportLog, filepath.Join(kraken2Dir, "krona_radial_tree.html"), kronaBase, kronaBase))
	}

	// multiqc over the run
	for _, m := range []struct {
		analysis, module string
		deps             []string
	}{
		{"fastqc", "fastqc", fastqcOKs},
		{"kraken2", "kraken", kraken2OKs},
	} {
		base := filepath.Join(logDir, m.analysis+".multiqc_report")
		b.add(base+".OK", m.deps, fmt.Sprintf(
			"cd %s; %s . -m %s -o %s -n %s -dd -1 --no-ansi > %s.log 2> %s.err",
			analysisDir, multiqc, m.module, filepath.Join(analysisDir, "all", m.analysis), m.analysis, base, base))
	}

	// krona over the run
	kronaBase := filepath.Join(logDir, "kraken2.krona_radial_tree")
	b.add(kronaBase+".OK", kraken2OKs, fmt.Sprintf("%s -q 2 -t 4 %s -o %s > %s.log 2> %s.err",
		krona, strings.Join(reports, " "), filepath.Join(analysisDir, "all", "kraken2", "krona_radial_tree.html"),
		kronaBase, kronaBase))

	if b.err != nil {
		return nil, b.err
	}

	plan.Graph.SetCleanup(fmt.Sprintf("rm -fr %s %s", destDir, logDir))
	return plan, nil
}
