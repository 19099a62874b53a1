package report

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cavspipes/pipegen/pkg/core"
	"github.com/cavspipes/pipegen/pkg/pipeline"
)

type fakeInfo struct {
	fs.FileInfo
	mtime time.Time
}

func (f fakeInfo) ModTime() time.Time { return f.mtime }

func buildGraph(t *testing.T) *pipeline.Graph {
	t.Helper()
	g := pipeline.New()
	require.NoError(t, g.Add("log/copy.OK", nil, "cp a b"))
	require.NoError(t, g.Add("log/qc.OK", []string{"log/copy.OK"}, "fastqc b"))
	require.NoError(t, g.AddMarker("log/all.OK", []string{"log/copy.OK", "log/qc.OK"}))
	return g
}

func TestBuild(t *testing.T) {
	g := buildGraph(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	files := map[string]time.Time{
		"log/copy.OK": base,
		"log/qc.OK":   base.Add(-time.Minute),
	}
	stat := func(name string) (fs.FileInfo, error) {
		if mt, ok := files[name]; ok {
			return fakeInfo{mtime: mt}, nil
		}
		return nil, fs.ErrNotExist
	}

	now := base.Add(time.Hour)
	idx := Build(g, pipeline.Inspect(g, stat), Options{Pipeline: "ilm-qc", MakeFile: "qc.mk", Version: "1.2.3", Now: now})

	assert.Equal(t, Version, idx.Version)
	assert.Equal(t, "ilm-qc", idx.Pipeline)
	assert.Equal(t, "1.2.3", idx.Pipegen.Version)
	assert.Equal(t, now, idx.GeneratedAt)
	assert.Equal(t, Summary{Total: 3, Done: 1, Stale: 1, Missing: 1}, idx.Summary)

	require.Len(t, idx.Steps, 3)
	assert.Equal(t, "done", idx.Steps[0].Status)
	require.NotNil(t, idx.Steps[0].ModTime)
	assert.Equal(t, base, *idx.Steps[0].ModTime)
	assert.Equal(t, "stale", idx.Steps[1].Status)
	assert.Equal(t, []string{"log/copy.OK"}, idx.Steps[1].Dependencies)
	assert.Equal(t, "missing", idx.Steps[2].Status)
	assert.Nil(t, idx.Steps[2].ModTime)
	assert.True(t, idx.Steps[2].Marker)

	assert.Equal(t, []string{"log/qc.OK", "log/all.OK"}, idx.Pending())
}

func TestBuild_WithoutStates(t *testing.T) {
	idx := Build(buildGraph(t), nil, Options{})

	assert.False(t, idx.GeneratedAt.IsZero())
	assert.Equal(t, Summary{Total: 3, Missing: 3}, idx.Summary)
}

func TestBuild_EmptyGraph(t *testing.T) {
	idx := Build(pipeline.New(), nil, Options{Pipeline: "refseq"})
	assert.Empty(t, idx.Steps)
	assert.NotNil(t, idx.Steps)
	assert.Nil(t, idx.Pending())
}

func TestWriteJSON_ReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	idx := Build(buildGraph(t), nil, Options{Pipeline: "serotype", Now: time.Unix(0, 0)})

	require.NoError(t, WriteJSON(path, idx))

	got, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Summary, got.Summary)
	assert.Equal(t, idx.Pending(), got.Pending())
	assert.Equal(t, "serotype", got.Pipeline)
}

func TestWriteJSON_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "status.json")
	err := WriteJSON(path, Build(pipeline.New(), nil, Options{}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrWriteScript))
}

func TestReadJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := ReadJSON(path)
	assert.Error(t, err)

	_, err = ReadJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
