// Package generate builds the pipeline graphs of the CAVS analysis pipelines.
//
// Drivers are pure: they build a Plan from their options and never touch
// the filesystem. Plan.Write bootstraps the directories and writes the
// make file.
package generate

import (
	"github.com/cavspipes/pipegen/pkg/logger"
	"github.com/cavspipes/pipegen/pkg/pipeline"
	"github.com/cavspipes/pipegen/pkg/workspace"
)

// Toolbox resolves a tool name to the executable used in commands.
type Toolbox interface {
	Tool(name string) string
}

// Plan is a built pipeline and the directories its commands write into.
type Plan struct {
	Graph *pipeline.Graph
	Dirs  []string
}

// Write creates the plan's directories, then writes the make file.
func (p *Plan) Write(emitter *pipeline.Emitter, makeFile string) error {
	if err := workspace.Ensure(p.Dirs...); err != nil {
		return err
	}
	if err := emitter.WriteFile(p.Graph, makeFile); err != nil {
		return err
	}
	logger.Info("wrote %d steps to %s", p.Graph.Len(), makeFile)
	return nil
}

// builder adds steps until the first error, which it keeps.
type builder struct {
	g   *pipeline.Graph
	err error
}

func (b *builder) add(target string, deps []string, command string) {
	if b.err != nil {
		return
	}
	b.err = b.g.Add(target, deps, command)
}
