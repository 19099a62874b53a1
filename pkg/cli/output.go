package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/cavspipes/pipegen/pkg/config"
	"github.com/cavspipes/pipegen/pkg/core"
	"github.com/cavspipes/pipegen/pkg/generate"
	"github.com/cavspipes/pipegen/pkg/logger"
	"github.com/cavspipes/pipegen/pkg/pipeline"
	"github.com/cavspipes/pipegen/pkg/report"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

var (
	// terminalColors is whether the environment allows colors at all.
	terminalColors = detectColors()
	// colorsEnabled determines if ANSI colors should be used for this run.
	colorsEnabled = terminalColors
)

func detectColors() bool {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		return fileInfo.Mode()&os.ModeCharDevice != 0
	}
	return true
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

// param is one line of the parameter listing.
type param struct {
	name, value string
}

func printParams(w io.Writer, params []param) {
	for _, p := range params {
		fmt.Fprintf(w, "\t%-20s :   %s\n", p.name, p.value)
	}
}

// loadConfig resolves the configuration named by the global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Resolve(c.String("config"), c.String("env-file"))
}

func graphOptions(cfg *config.Config) []pipeline.Option {
	if cfg.AllowDuplicateTargets {
		return []pipeline.Option{pipeline.WithDuplicateTargets()}
	}
	return nil
}

func emitter(cfg *config.Config) *pipeline.Emitter {
	return pipeline.NewEmitter(pipeline.WithShell(cfg.Shell))
}

// absDir returns dir as an absolute path, defaulting to the working directory.
func absDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

// startLogging opens the log file named by --log-file, or pipegen.log next
// to the make file.
func startLogging(c *cli.Context, makeFile string) error {
	logPath := c.String("log-file")
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(makeFile), "pipegen.log")
	}
	return logger.Init(logPath)
}

// writePlan bootstraps the plan's directories, writes the make file and
// prints how to run it.
func writePlan(c *cli.Context, cfg *config.Config, plan *generate.Plan, makeFile string, jobs int) error {
	if err := startLogging(c, makeFile); err != nil {
		return err
	}
	defer logger.Close()

	for _, name := range cfg.ToolNames() {
		logger.Debug("tool %s: %s", name, cfg.Tool(name))
	}

	w := c.App.Writer
	fmt.Fprintln(w, "Writing pipeline")
	if err := plan.Write(emitter(cfg), makeFile); err != nil {
		logger.Error("pipeline not written: %v", err)
		return err
	}

	fmt.Fprintf(w, "  %s✓%s %d steps written to %s\n", color(colorGreen), color(colorReset), plan.Graph.Len(), makeFile)
	fmt.Fprintf(w, "i.e. %smake -f %s -j %d -k%s\n", color(colorBold), makeFile, jobs, color(colorReset))
	return nil
}

// statusFlags are shared by the commands that support --status.
var statusFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:  "status",
		Usage: "Show the state of every step instead of writing the make file",
	},
	&cli.StringFlag{
		Name:  "report",
		Usage: "With --status, also write the states as JSON to this file",
	},
}

// showStatus prints the sentinel state of every step without touching the
// pipeline's files and, with --report, writes it as JSON.
func showStatus(c *cli.Context, name string, g *pipeline.Graph, makeFile string) error {
	w := c.App.Writer
	states := pipeline.Inspect(g, nil)
	printStatus(w, states)

	idx := report.Build(g, states, report.Options{Pipeline: name, MakeFile: makeFile, Version: Version})
	if pending := idx.Pending(); len(pending) > 0 {
		fmt.Fprintf(w, "%d step(s) left to run, first %s\n", len(pending), pending[0])
	} else {
		fmt.Fprintln(w, "Nothing left to run")
	}

	if path := c.String("report"); path != "" {
		if err := report.WriteJSON(path, idx); err != nil {
			return err
		}
		fmt.Fprintf(w, "Status report written to %s\n", path)
	}
	return nil
}

func printStatus(w io.Writer, states []pipeline.SentinelState) {
	var done, stale, missing int
	fmt.Fprintf(w, "\n%sStatus%s\n", color(colorBold), color(colorReset))
	for _, s := range states {
		c := colorGreen
		switch {
		case !s.Status.NeedsRun():
			done++
		case s.Status == core.StatusStale:
			c = colorYellow
			stale++
		default:
			c = colorRed
			missing++
		}
		fmt.Fprintf(w, "  %s%-8s%s %s\n", color(c), s.Status, color(colorReset), s.Target)
	}
	fmt.Fprintf(w, "\n%d done, %d stale, %d missing\n", done, stale, missing)
}
