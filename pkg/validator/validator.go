// Package validator checks sample manifests before a pipeline is generated.
// It reads every manifest upfront and reports all problems, not just the first.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cavspipes/pipegen/pkg/manifest"
)

// ManifestExt is the extension collected when a directory is validated.
const ManifestExt = ".sa"

// ValidationError represents a validation error with context.
type ValidationError struct {
	File    string
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Files is the list of manifest paths in the order they were checked.
	Files []string
	// Samples is the number of valid sample records.
	Samples int
	// Errors contains all validation errors found.
	Errors []error
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *Result) addError(file string, line int, format string, args ...interface{}) {
	r.Errors = append(r.Errors, &ValidationError{File: file, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Option configures a Validator.
type Option func(*Validator)

// WithFastqDir makes the validator check that every read file exists in dir.
func WithFastqDir(dir string) Option {
	return func(v *Validator) {
		v.fastqDir = dir
	}
}

// Validator validates sample manifests.
type Validator struct {
	fastqDir string
}

// New creates a new Validator.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type origin struct {
	file string
	line int
}

// ValidateManifests validates manifest files or directories of manifests.
// Sample ids must be unique across all of them.
func (v *Validator) ValidateManifests(paths ...string) *Result {
	result := &Result{}
	seen := make(map[string]origin)
	validated := make(map[string]bool)

	for _, path := range paths {
		files, err := v.collect(path)
		if err != nil {
			result.addError(path, 0, "cannot access: %v", err)
			continue
		}
		for _, file := range files {
			// Skip if already validated
			if validated[file] {
				continue
			}
			validated[file] = true
			v.validateFile(file, result, seen)
		}
	}

	return result
}

// collect expands a directory into its manifest files.
func (v *Validator) collect(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(p), ManifestExt) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func (v *Validator) validateFile(file string, result *Result, seen map[string]origin) {
	data, err := os.ReadFile(file) //#nosec G304 -- user-provided sample file
	if err != nil {
		result.addError(file, 0, "cannot read: %v", err)
		return
	}
	result.Files = append(result.Files, file)

	records, errs := manifest.Scan(data, file)
	for _, err := range errs {
		if pe, ok := err.(*manifest.ParseError); ok {
			result.addError(pe.Path, pe.Line, "%s", pe.Message)
			continue
		}
		result.addError(file, 0, "%v", err)
	}

	for _, r := range records {
		if prev, dup := seen[r.ID]; dup {
			result.addError(file, r.Line, "duplicate sample id %q (also in %s:%d)", r.ID, prev.file, prev.line)
			continue
		}
		seen[r.ID] = origin{file: file, line: r.Line}
		result.Samples++

		if v.fastqDir != "" {
			for _, fq := range []string{r.FastQ1, r.FastQ2} {
				if _, err := os.Stat(filepath.Join(v.fastqDir, fq)); err != nil {
					result.addError(file, r.Line, "sample %s: read file %s not found in %s", r.ID, fq, v.fastqDir)
				}
			}
		}
	}
}
