package pipeline

import (
	"io/fs"
	"os"
	"time"

	"github.com/cavspipes/pipegen/pkg/core"
)

// StatFunc reports file information for a sentinel path.
type StatFunc func(name string) (fs.FileInfo, error)

// SentinelState is the on-disk state of one step's sentinel.
type SentinelState struct {
	Target  string
	Status  core.SentinelStatus
	ModTime time.Time // Zero when the sentinel is missing
}

// Inspect evaluates every step's sentinel against the filesystem, in
// insertion order. A step is done when its sentinel exists, no dependency
// sentinel is newer, and every dependency produced by the graph is itself
// done. Nothing is created or touched. A nil stat uses os.Stat.
func Inspect(g *Graph, stat StatFunc) []SentinelState {
	if stat == nil {
		stat = os.Stat
	}

	in := &inspector{
		graph:     g,
		stat:      stat,
		producers: make(map[string][]int),
		modTimes:  make(map[string]time.Time),
		exists:    make(map[string]bool),
		statuses:  make(map[string]core.SentinelStatus),
		visiting:  make(map[string]bool),
	}
	for i, s := range g.steps {
		in.producers[s.Target] = append(in.producers[s.Target], i)
	}

	states := make([]SentinelState, len(g.steps))
	for i, s := range g.steps {
		status := in.status(s.Target)
		mtime, _ := in.lookup(s.Target)
		states[i] = SentinelState{Target: s.Target, Status: status, ModTime: mtime}
	}
	return states
}

type inspector struct {
	graph     *Graph
	stat      StatFunc
	producers map[string][]int
	modTimes  map[string]time.Time
	exists    map[string]bool
	statuses  map[string]core.SentinelStatus
	visiting  map[string]bool
}

func (in *inspector) lookup(path string) (time.Time, bool) {
	if ok, seen := in.exists[path]; seen {
		return in.modTimes[path], ok
	}
	info, err := in.stat(path)
	if err != nil {
		in.exists[path] = false
		return time.Time{}, false
	}
	in.exists[path] = true
	in.modTimes[path] = info.ModTime()
	return info.ModTime(), true
}

func (in *inspector) status(target string) core.SentinelStatus {
	if s, ok := in.statuses[target]; ok {
		return s
	}

	mtime, ok := in.lookup(target)
	if !ok {
		in.statuses[target] = core.StatusMissing
		return core.StatusMissing
	}

	in.visiting[target] = true
	defer delete(in.visiting, target)

	result := core.StatusDone
	for _, idx := range in.producers[target] {
		for _, dep := range in.graph.steps[idx].Dependencies {
			if in.depStale(dep, mtime) {
				result = core.StatusStale
				break
			}
		}
		if result == core.StatusStale {
			break
		}
	}

	in.statuses[target] = result
	return result
}

func (in *inspector) depStale(dep string, mtime time.Time) bool {
	if _, produced := in.producers[dep]; produced {
		// A cycle cannot be satisfied by make either.
		if in.visiting[dep] {
			return true
		}
		if in.status(dep) != core.StatusDone {
			return true
		}
	}
	depTime, ok := in.lookup(dep)
	if !ok {
		return true
	}
	return depTime.After(mtime)
}
