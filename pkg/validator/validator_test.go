package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func errorStrings(r *Result) []string {
	out := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		out[i] = err.Error()
	}
	return out
}

func TestValidateManifests_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ilm23.sa")
	writeManifest(t, file, "#id\tfastq1\tfastq2\nS1\ta_R1.fq.gz\ta_R2.fq.gz\nS2\tb_R1.fq.gz\tb_R2.fq.gz\n")

	result := New().ValidateManifests(file)

	if !result.IsValid() {
		t.Errorf("expected valid result, got errors: %v", result.Errors)
	}
	if result.Samples != 2 {
		t.Errorf("expected 2 samples, got %d", result.Samples)
	}
	if len(result.Files) != 1 || result.Files[0] != file {
		t.Errorf("expected files [%s], got %v", file, result.Files)
	}
}

func TestValidateManifests_ReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.sa")
	writeManifest(t, file, "S1\ta.fq\nS2\t\tb.fq\nS3\tc.fq\td.fq\nS3\te.fq\tf.fq\n")

	result := New().ValidateManifests(file)

	if result.IsValid() {
		t.Fatal("expected invalid result")
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	msgs := errorStrings(result)
	if !strings.Contains(msgs[0], "bad.sa:1:") || !strings.Contains(msgs[0], "got 2") {
		t.Errorf("unexpected first error: %s", msgs[0])
	}
	if !strings.Contains(msgs[1], "bad.sa:2:") || !strings.Contains(msgs[1], "FastQ1 is required") {
		t.Errorf("unexpected second error: %s", msgs[1])
	}
	if !strings.Contains(msgs[2], `duplicate sample id "S3"`) {
		t.Errorf("unexpected third error: %s", msgs[2])
	}
	if result.Samples != 1 {
		t.Errorf("expected 1 valid sample, got %d", result.Samples)
	}
}

func TestValidateManifests_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "ilm22.sa")
	second := filepath.Join(dir, "ilm23.sa")
	writeManifest(t, first, "S1\ta.fq\tb.fq\n")
	writeManifest(t, second, "#header\nS1\tc.fq\td.fq\n")

	result := New().ValidateManifests(first, second)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	want := second + `:2: duplicate sample id "S1" (also in ` + first + ":1)"
	if got := result.Errors[0].Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValidateManifests_SameFileTwice(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ilm23.sa")
	writeManifest(t, file, "S1\ta.fq\tb.fq\n")

	result := New().ValidateManifests(file, file)

	if !result.IsValid() {
		t.Errorf("expected valid result, got %v", result.Errors)
	}
	if len(result.Files) != 1 {
		t.Errorf("expected file checked once, got %v", result.Files)
	}
}

func TestValidateManifests_Directory(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, filepath.Join(dir, "a.sa"), "S1\ta.fq\tb.fq\n")
	writeManifest(t, filepath.Join(dir, "nested", "b.sa"), "S2\tc.fq\td.fq\n")
	writeManifest(t, filepath.Join(dir, "notes.txt"), "not a manifest")

	result := New().ValidateManifests(dir)

	if !result.IsValid() {
		t.Errorf("expected valid result, got %v", result.Errors)
	}
	if len(result.Files) != 2 {
		t.Errorf("expected 2 manifests, got %v", result.Files)
	}
	if result.Samples != 2 {
		t.Errorf("expected 2 samples, got %d", result.Samples)
	}
}

func TestValidateManifests_MissingPath(t *testing.T) {
	result := New().ValidateManifests("/nonexistent/run.sa")

	if result.IsValid() {
		t.Fatal("expected invalid result")
	}
	if !strings.Contains(result.Errors[0].Error(), "cannot access") {
		t.Errorf("unexpected error: %v", result.Errors[0])
	}
}

func TestValidateManifests_FastqDir(t *testing.T) {
	dir := t.TempDir()
	fastqDir := filepath.Join(dir, "Fastq")
	writeManifest(t, filepath.Join(fastqDir, "a_R1.fq.gz"), "")
	file := filepath.Join(dir, "run.sa")
	writeManifest(t, file, "S1\ta_R1.fq.gz\ta_R2.fq.gz\n")

	result := New(WithFastqDir(fastqDir)).ValidateManifests(file)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Error(), "a_R2.fq.gz not found") {
		t.Errorf("unexpected error: %v", result.Errors[0])
	}
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{File: "run.sa", Message: "empty"}
	if e.Error() != "run.sa: empty" {
		t.Errorf("got %q", e.Error())
	}
	e.Line = 4
	if e.Error() != "run.sa:4: empty" {
		t.Errorf("got %q", e.Error())
	}
}
