package generate

import (
	"fmt"
	"path/filepath"

	"github.com/cavspipes/pipegen/pkg/manifest"
	"github.com/cavspipes/pipegen/pkg/pipeline"
)

// SerotypeOptions configures the Salmonella serotyping pipeline.
type SerotypeOptions struct {
	Samples      []manifest.Sample
	OutputDir    string
	Tools        Toolbox
	GraphOptions []pipeline.Option
}

// serotypeDirs are created under <output>/<sample id>.
var serotypeDirs = []string{
	"spades_assembly",
	"seqsero2",
	"mlst",
	"sistr",
	"bam",
	filepath.Join("bam", "ref"),
	"bcf",
}

// Serotype assembles each sample with SPAdes, types it with SeqSero2, MLST
// and SISTR, and calls variants of the reads against the sample's own
// assembly.
func Serotype(opts SerotypeOptions) (*Plan, error) {
	logDir := filepath.Join(opts.OutputDir, "log")

	spades := opts.Tools.Tool("spades")
	seqsero2 := opts.Tools.Tool("seqsero2")
	mlst := opts.Tools.Tool("mlst")
	sistr := opts.Tools.Tool("sistr")
	bwa := opts.Tools.Tool("bwa")
	samtools := opts.Tools.Tool("samtools")
	bcftools := opts.Tools.Tool("bcftools")

	plan := &Plan{
		Graph: pipeline.New(opts.GraphOptions...),
		Dirs:  []string{logDir},
	}
	b := &builder{g: plan.Graph}

	for _, s := range opts.Samples {
		sampleDir := filepath.Join(opts.OutputDir, s.ID)
		plan.Dirs = append(plan.Dirs, sampleDir)
		for _, d := range serotypeDirs {
			plan.Dirs = append(plan.Dirs, filepath.Join(sampleDir, d))
		}

		// assembly
		dir := filepath.Join(sampleDir, "spades_assembly")
		contigs := filepath.Join(dir, "contigs.fasta")
		assemblyOK := filepath.Join(logDir, s.ID+"_spades_assembly_contigs.OK")
		b.add(assemblyOK, nil, fmt.Sprintf("%s -o %s --isolate -1 %s -2 %s > %s 2> %s",
			spades, dir, s.FastQ1, s.FastQ2, runLog(dir), runErr(dir)))

		// serovar and antigens from reads
		dir = filepath.Join(sampleDir, "seqsero2")
		b.add(filepath.Join(logDir, s.ID+".seqsero2.OK"), nil, fmt.Sprintf(
			"%s -d %s -n %s -t 2 -i %s %s > %s 2> %s",
			seqsero2, dir, s.ID, s.FastQ1, s.FastQ2, runLog(dir), runErr(dir)))

		// sequence typing
		dir = filepath.Join(sampleDir, "mlst")
		b.add(filepath.Join(logDir, s.ID+".mlst.OK"), []string{assemblyOK}, fmt.Sprintf(
			"%s %s --json %s --scheme senterica_achtman_2 --nopath > %s 2> %s",
			mlst, contigs, filepath.Join(dir, "typing.json"), runLog(dir), runErr(dir)))

		// SISTR
		dir = filepath.Join(sampleDir, "sistr")
		b.add(filepath.Join(logDir, s.ID+".sistr.OK"), []string{assemblyOK}, fmt.Sprintf(
			"%s %s -f csv -o %s -K -T %s > %s 2> %s",
			sistr, contigs, filepath.Join(dir, "sistr"), dir, runLog(dir), runErr(dir)))

		// reference
		bamDir := filepath.Join(sampleDir, "bam")
		ref := filepath.Join(bamDir, "ref", "ref.fasta")
		refOK := filepath.Join(logDir, s.ID+".ref.fasta.OK")
		b.add(refOK, []string{assemblyOK}, fmt.Sprintf("cp %s %s", contigs, ref))

		indexOK := filepath.Join(bamDir, "ref", "bwa_index.ok")
		b.add(indexOK, []string{refOK}, fmt.Sprintf("%s index -a bwtsw %s", bwa, ref))

		// alignment
		bam := filepath.Join(bamDir, "aligned.bam")
		b.add(bam+".ok", []string{indexOK}, fmt.Sprintf(
			"set -o pipefail; %s mem -t 2 -M %s %s %s | %s view -hF4 | %s sort -o %s > %s 2> %s",
			bwa, ref, s.FastQ1, s.FastQ2, samtools, samtools, bam, runLog(bamDir), runErr(bamDir)))
		b.add(bam+".bai.ok", []string{bam + ".ok"}, fmt.Sprintf("%s index %s", samtools, bam))

		// variants
		bcfDir := filepath.Join(sampleDir, "bcf")
		bcf := filepath.Join(bcfDir, "call.bcf")
		b.add(bcf+".ok", []string{bam + ".bai.ok"}, fmt.Sprintf(
			"set -o pipefail; %s mpileup -f %s %s | %s call -mv -Ob -o %s > %s 2> %s",
			bcftools, ref, bam, bcftools, bcf, runLog(bcfDir), runErr(bcfDir)))
		b.add(bcf+".csi.ok", []string{bcf + ".ok"}, fmt.Sprintf("%s index -f %s", bcftools, bcf))
	}

	if b.err != nil {
		return nil, b.err
	}
	return plan, nil
}

func runLog(dir string) string { return filepath.Join(dir, "run.log") }
func runErr(dir string) string { return filepath.Join(dir, "run.err") }
