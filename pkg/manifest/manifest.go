// Package manifest reads tab-delimited sample manifests into immutable
// Sample and Run records.
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/cavspipes/pipegen/pkg/core"
)

// Sample is one sequenced sample: its 1-based position in the manifest,
// its identifier and its paired read files.
type Sample struct {
	Index  int    `validate:"min=1"`
	ID     string `validate:"required,sampleid"`
	FastQ1 string `validate:"required"`
	FastQ2 string `validate:"required"`
}

// NewSample builds a validated Sample.
func NewSample(index int, id, fastq1, fastq2 string) (Sample, error) {
	s := Sample{Index: index, ID: id, FastQ1: fastq1, FastQ2: fastq2}
	if err := getValidator().Struct(s); err != nil {
		return Sample{}, err
	}
	return s, nil
}

// Run is a sequencing run and its samples.
type Run struct {
	ID      string
	Index   string // Run ID without its instrument prefix: ilm23 -> 23
	Samples []Sample
}

// NewRun builds a Run. The first three characters of id are the instrument
// prefix; shorter ids keep an empty index.
func NewRun(id string, samples []Sample) Run {
	index := ""
	if len(id) > 3 {
		index = id[3:]
	}
	return Run{ID: id, Index: index, Samples: append([]Sample(nil), samples...)}
}

// ParseError represents a manifest error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Is makes every ParseError match core.ErrInvalidManifest.
func (e *ParseError) Is(target error) bool {
	return target == core.ErrInvalidManifest
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Sample ids end up in file names and make targets.
		_ = validate.RegisterValidation("sampleid", func(fl validator.FieldLevel) bool {
			return !strings.ContainsAny(fl.Field().String(), " \t/#:%$")
		})
	})
	return validate
}

// ParseFile reads a sample manifest from disk.
func ParseFile(path string) ([]Sample, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided sample file
	if err != nil {
		return nil, fmt.Errorf("failed to read sample file: %w", err)
	}
	return Parse(data, path)
}

// Parse reads manifest content. Lines starting with '#' and blank lines are
// skipped; every other line must hold exactly id, fastq1 and fastq2
// separated by tabs. Sample ids must be unique.
// It stops at the first problem; use Scan to collect them all.
func Parse(data []byte, sourcePath string) ([]Sample, error) {
	records, errs := Scan(data, sourcePath)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	samples := make([]Sample, len(records))
	for i, r := range records {
		samples[i] = r.Sample
	}
	return samples, nil
}

// Record is a sample and the manifest line it was read from.
type Record struct {
	Sample
	Line int
}

// Scan reads manifest content like Parse but keeps going past bad records.
// It returns the valid records and one *ParseError per problem found.
func Scan(data []byte, sourcePath string) ([]Record, []error) {
	var (
		records []Record
		errs    []error
	)
	seen := make(map[string]int)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			errs = append(errs, &ParseError{
				Path:    sourcePath,
				Line:    lineNo,
				Message: fmt.Sprintf("expected 3 tab-separated fields (id, fastq1, fastq2), got %d", len(fields)),
			})
			continue
		}

		id := strings.TrimSpace(fields[0])
		sample, err := NewSample(len(records)+1, id, strings.TrimSpace(fields[1]), strings.TrimSpace(fields[2]))
		if err != nil {
			errs = append(errs, &ParseError{Path: sourcePath, Line: lineNo, Message: describeValidation(err)})
			continue
		}
		if prev, dup := seen[id]; dup {
			errs = append(errs, &ParseError{
				Path:    sourcePath,
				Line:    lineNo,
				Message: fmt.Sprintf("duplicate sample id %q (first seen on line %d)", id, prev),
			})
			continue
		}
		seen[id] = lineNo
		records = append(records, Record{Sample: sample, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, &ParseError{Path: sourcePath, Message: err.Error()})
	}

	return records, errs
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "sampleid":
			msgs = append(msgs, fmt.Sprintf("%s must not contain whitespace or any of / # : %% $", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
