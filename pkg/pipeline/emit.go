package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cavspipes/pipegen/pkg/core"
	"github.com/cavspipes/pipegen/pkg/logger"
	"github.com/cavspipes/pipegen/pkg/workspace"
)

// Emitter defaults.
const (
	DefaultShell     = "/bin/bash"
	DefaultGoal      = "all"
	DefaultCleanGoal = "clean"
)

// Emitter renders a Graph as a GNU make file.
type Emitter struct {
	Shell       string // Shell used for recipes; empty leaves make's default
	DefaultGoal string // Aggregate goal depending on every target
	CleanGoal   string // Goal that runs the cleanup command
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithShell sets the recipe shell.
func WithShell(shell string) EmitterOption {
	return func(e *Emitter) {
		e.Shell = shell
	}
}

// WithGoals renames the aggregate and clean goals.
func WithGoals(defaultGoal, cleanGoal string) EmitterOption {
	return func(e *Emitter) {
		e.DefaultGoal = defaultGoal
		e.CleanGoal = cleanGoal
	}
}

// NewEmitter creates an Emitter using bash, "all" and "clean".
func NewEmitter(opts ...EmitterOption) *Emitter {
	e := &Emitter{
		Shell:       DefaultShell,
		DefaultGoal: DefaultGoal,
		CleanGoal:   DefaultCleanGoal,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit renders g. The output depends only on g and the emitter settings.
func (e *Emitter) Emit(g *Graph) []byte {
	var buf bytes.Buffer

	cleanup, hasCleanup := g.Cleanup()

	if e.Shell != "" {
		fmt.Fprintf(&buf, "SHELL:=%s\n", e.Shell)
	}
	// make removes a target whose recipe failed, so a failed step never
	// leaves a fresh sentinel behind.
	buf.WriteString(".DELETE_ON_ERROR:\n")
	phony := []string{e.DefaultGoal}
	if hasCleanup {
		phony = append(phony, e.CleanGoal)
	}
	writeRuleLine(&buf, ".PHONY", phony)
	buf.WriteString("\n")

	writeRuleLine(&buf, e.DefaultGoal, g.Targets())
	buf.WriteString("\n")

	for _, s := range g.steps {
		writeRuleLine(&buf, s.Target, s.Dependencies)
		if !s.Marker {
			writeRecipe(&buf, s.Command)
		}
		fmt.Fprintf(&buf, "\ttouch %s\n", s.Target)
		buf.WriteString("\n")
	}

	if hasCleanup {
		writeRuleLine(&buf, e.CleanGoal, nil)
		writeRecipe(&buf, cleanup)
	}

	return buf.Bytes()
}

// WriteFile renders g and writes it to path in a single atomic step.
func (e *Emitter) WriteFile(g *Graph, path string) error {
	data := e.Emit(g)
	if err := workspace.WriteFileAtomic(path, data, 0o644); err != nil {
		return core.ErrWriteScript.WithDetails(map[string]interface{}{"path": path}).WithCause(err)
	}
	logger.Info("wrote %s: %d steps, %d bytes", path, g.Len(), len(data))
	return nil
}

func writeRuleLine(buf *bytes.Buffer, target string, deps []string) {
	buf.WriteString(target)
	buf.WriteString(" :")
	if len(deps) > 0 {
		buf.WriteString(" ")
		buf.WriteString(strings.Join(deps, " "))
	}
	buf.WriteString("\n")
}

func writeRecipe(buf *bytes.Buffer, command string) {
	for _, line := range strings.Split(command, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString("\t")
		buf.WriteString(line)
		buf.WriteString("\n")
	}
}
