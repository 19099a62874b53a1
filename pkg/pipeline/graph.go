package pipeline

import (
	"strings"

	"github.com/cavspipes/pipegen/pkg/core"
	"github.com/cavspipes/pipegen/pkg/logger"
)

// Step is one rule of the graph.
type Step struct {
	Target       string   // Sentinel path refreshed after Command succeeds
	Dependencies []string // Sentinels that must be up to date first
	Command      string   // Shell command; each line becomes one recipe line
	Marker       bool     // Rule only refreshes its sentinel
}

// Option configures a Graph.
type Option func(*Graph)

// WithDuplicateTargets allows several steps to share a target. Both rules
// are emitted and make decides which recipe wins.
func WithDuplicateTargets() Option {
	return func(g *Graph) {
		g.allowDuplicates = true
	}
}

// Graph accumulates steps in insertion order plus an optional cleanup
// command. It has a single owner and is not safe for concurrent use.
type Graph struct {
	steps           []Step
	targets         map[string]int
	cleanup         string
	allowDuplicates bool
}

// New creates an empty Graph.
func New(opts ...Option) *Graph {
	g := &Graph{targets: make(map[string]int)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Add appends a step that runs command and then refreshes target.
func (g *Graph) Add(target string, deps []string, command string) error {
	if strings.TrimSpace(command) == "" {
		return core.ErrEmptyCommand.WithDetails(map[string]interface{}{"target": target})
	}
	return g.add(Step{Target: target, Dependencies: deps, Command: command})
}

// AddMarker appends a step with no command. Its rule only refreshes target,
// which is useful for grouping several sentinels under one name.
func (g *Graph) AddMarker(target string, deps []string) error {
	return g.add(Step{Target: target, Dependencies: deps, Marker: true})
}

func (g *Graph) add(s Step) error {
	if s.Target == "" {
		return core.ErrEmptyTarget
	}
	if err := checkPath(s.Target); err != nil {
		return err
	}
	for _, dep := range s.Dependencies {
		if err := checkPath(dep); err != nil {
			return err.WithDetails(map[string]interface{}{"target": s.Target, "dependency": dep})
		}
	}

	if _, exists := g.targets[s.Target]; exists {
		if !g.allowDuplicates {
			return core.ErrDuplicateTarget.WithDetails(map[string]interface{}{"target": s.Target})
		}
		logger.Warn("target %s is produced by more than one step", s.Target)
	}

	// Own the slice so later changes by the caller do not leak in.
	if len(s.Dependencies) > 0 {
		s.Dependencies = append([]string(nil), s.Dependencies...)
	} else {
		s.Dependencies = nil
	}

	g.targets[s.Target] = len(g.steps)
	g.steps = append(g.steps, s)
	logger.Debug("added step %d: %s (%d deps)", len(g.steps), s.Target, len(s.Dependencies))
	return nil
}

// unsafePathChars are split on or interpreted by make in a rule line:
// whitespace separates prerequisites, '#' starts a comment, ':' ends the
// target list, '%' is a pattern and '$' a variable reference.
const unsafePathChars = " \t\r\n#:%$"

// checkPath rejects paths make would split or misread as prerequisites.
func checkPath(p string) *core.GenerationError {
	if p == "" || strings.ContainsAny(p, unsafePathChars) {
		return core.ErrInvalidPath.WithDetails(map[string]interface{}{"path": p})
	}
	return nil
}

// SetCleanup records the command of the clean goal, replacing any previous
// one. An empty command removes the clean goal.
func (g *Graph) SetCleanup(command string) {
	g.cleanup = command
}

// Cleanup returns the cleanup command and whether one is set.
func (g *Graph) Cleanup() (string, bool) {
	return g.cleanup, g.cleanup != ""
}

// Steps returns a copy of the steps in insertion order.
func (g *Graph) Steps() []Step {
	out := make([]Step, len(g.steps))
	for i, s := range g.steps {
		s.Dependencies = append([]string(nil), s.Dependencies...)
		out[i] = s
	}
	return out
}

// Targets returns every step target in insertion order, duplicates included.
func (g *Graph) Targets() []string {
	out := make([]string, len(g.steps))
	for i, s := range g.steps {
		out[i] = s.Target
	}
	return out
}

// Len returns the number of steps.
func (g *Graph) Len() int {
	return len(g.steps)
}
