package pipeline

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run the emitted script through GNU make to check the
// completion-marker protocol end to end.

func requireMake(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("make")
	if err != nil {
		t.Skip("make not installed")
	}
	return path
}

func runMake(t *testing.T, makePath, dir string) error {
	t.Helper()
	cmd := exec.Command(makePath, "-k", "-f", "run.mk")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	t.Logf("make output:\n%s", out)
	return err
}

func readRuns(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "runs.log"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	runs := strings.Fields(string(data))
	sort.Strings(runs)
	return runs
}

func modTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime()
}

func TestMake_FailureContainment(t *testing.T) {
	makePath := requireMake(t)
	dir := t.TempDir()

	g := New()
	require.NoError(t, g.Add("a.OK", nil, "echo a >> runs.log"))
	require.NoError(t, g.Add("b.OK", []string{"a.OK"}, "echo b >> runs.log\ntest -f ready"))
	require.NoError(t, g.Add("c.OK", []string{"b.OK"}, "echo c >> runs.log"))
	require.NoError(t, g.Add("d.OK", nil, "echo d >> runs.log"))
	require.NoError(t, g.Add("e.OK", []string{"d.OK"}, "echo e >> runs.log"))
	require.NoError(t, NewEmitter(WithShell("/bin/sh")).WriteFile(g, filepath.Join(dir, "run.mk")))

	// First run: b fails, c is never eligible, the d/e branch completes.
	require.Error(t, runMake(t, makePath, dir))
	assert.Equal(t, []string{"a", "b", "d", "e"}, readRuns(t, dir))
	assert.NoFileExists(t, filepath.Join(dir, "b.OK"))
	assert.NoFileExists(t, filepath.Join(dir, "c.OK"))

	before := map[string]time.Time{}
	for _, s := range []string{"a.OK", "d.OK", "e.OK"} {
		before[s] = modTime(t, filepath.Join(dir, s))
	}

	require.NoError(t, os.Remove(filepath.Join(dir, "runs.log")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ready"), nil, 0o644))

	// Second run: only the failed step and its dependent run again.
	require.NoError(t, runMake(t, makePath, dir))
	assert.Equal(t, []string{"b", "c"}, readRuns(t, dir))
	for s, mt := range before {
		assert.Equal(t, mt, modTime(t, filepath.Join(dir, s)), "%s must be untouched", s)
	}

	// Third run: nothing left to do.
	require.NoError(t, os.Remove(filepath.Join(dir, "runs.log")))
	require.NoError(t, runMake(t, makePath, dir))
	assert.Empty(t, readRuns(t, dir))
}

func TestMake_DeleteOnError(t *testing.T) {
	makePath := requireMake(t)
	dir := t.TempDir()

	g := New()
	require.NoError(t, g.Add("half.OK", nil, "touch half.OK\nfalse"))
	require.NoError(t, NewEmitter(WithShell("/bin/sh")).WriteFile(g, filepath.Join(dir, "run.mk")))

	require.Error(t, runMake(t, makePath, dir))
	assert.NoFileExists(t, filepath.Join(dir, "half.OK"), "a failed rule must not leave its sentinel")
}

func TestMake_CleanGoal(t *testing.T) {
	makePath := requireMake(t)
	dir := t.TempDir()

	g := New()
	require.NoError(t, g.Add("a.OK", nil, "true"))
	g.SetCleanup("rm -f a.OK")
	require.NoError(t, NewEmitter(WithShell("/bin/sh")).WriteFile(g, filepath.Join(dir, "run.mk")))

	require.NoError(t, runMake(t, makePath, dir))
	assert.FileExists(t, filepath.Join(dir, "a.OK"))

	cmd := exec.Command(makePath, "-f", "run.mk", "clean")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	assert.NoFileExists(t, filepath.Join(dir, "a.OK"))
}

func TestMake_PipefailKeepsSentinelMissing(t *testing.T) {
	makePath := requireMake(t)
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not installed")
	}
	dir := t.TempDir()

	g := New()
	require.NoError(t, g.Add("combined.OK", nil, "set -o pipefail; gunzip -c missing.fna.gz | gzip > combined.fasta.gz"))
	require.NoError(t, NewEmitter(WithShell(bash)).WriteFile(g, filepath.Join(dir, "run.mk")))

	require.Error(t, runMake(t, makePath, dir))
	assert.NoFileExists(t, filepath.Join(dir, "combined.OK"), "a failed upstream command must not refresh the sentinel")
}
