// Package run implements the subprogram that evaluates dde scripts, either
// from a file, from the -c flag or interactively.
package run

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"src.dde.sh/pkg/eval"
	"src.dde.sh/pkg/logutil"
	"src.dde.sh/pkg/prog"
)

var logger = logutil.GetLogger("[run] ")

// Program is the run subprogram. It is the last subprogram of dde and always
// runs.
type Program struct {
	codeInArg   bool
	compileOnly bool
	json        *bool
	configPath  string
	seed        optionalInt
	maxDepth    optionalInt
}

// RegisterFlags registers the flags for running scripts.
func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.codeInArg, "c", false,
		"take the first argument as code to execute")
	fs.BoolVar(&p.compileOnly, "compileonly", false,
		"parse the script without evaluating it")
	fs.StringVar(&p.configPath, "config", "",
		"path to the configuration file; defaults to $XDG_CONFIG_HOME/dde/config.yaml")
	fs.Var(&p.seed, "seed", "seed of the random builtin; 0 seeds from the current time")
	fs.Var(&p.maxDepth, "max-call-depth", "limit of nested function calls")
	p.json = fs.JSON()
}

// Run runs a script, or the REPL if there are no arguments and stdin is a
// terminal.
func (p *Program) Run(fds [3]*os.File, args []string) error {
	cfg, err := p.loadConfig()
	if err != nil {
		return err
	}

	if len(args) == 0 && !p.codeInArg && isatty.IsTerminal(fds[0].Fd()) {
		return repl(fds, cfg)
	}

	var s script
	switch {
	case p.codeInArg:
		if len(args) != 1 {
			return prog.BadUsage("-c requires exactly one argument")
		}
		s = script{name: "code from -c", code: args[0]}
	case len(args) == 0:
		code, err := io.ReadAll(fds[0])
		if err != nil {
			return fmt.Errorf("cannot read stdin: %w", err)
		}
		s = script{name: "[stdin]", code: string(code)}
	case len(args) == 1:
		s, err = readScript(args[0])
		if err != nil {
			fmt.Fprintln(fds[2], err)
			return prog.Exit(2)
		}
	default:
		return prog.BadUsage("at most one script can be given")
	}

	if p.compileOnly {
		return prog.Exit(compileOnly(fds, s, *p.json))
	}
	return prog.Exit(runScript(fds, s, cfg, *p.json))
}

// Loads the configuration file, and applies the overrides from flags.
func (p *Program) loadConfig() (*Config, error) {
	path, mustExist := p.configPath, true
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			logger.Println("cannot determine config path:", err)
			return DefaultConfig(), nil
		}
		mustExist = false
	}
	cfg, err := LoadConfig(path, mustExist)
	if err != nil {
		return nil, err
	}
	if p.seed.set {
		cfg.Seed = p.seed.value
	}
	if p.maxDepth.set {
		if p.maxDepth.value <= 0 {
			return nil, prog.BadUsage("-max-call-depth must be positive")
		}
		cfg.MaxCallDepth = int(p.maxDepth.value)
	}
	return cfg, nil
}

// Creates an Evaler writing print output to out. Reports of failed statements
// go to report, or out if report is nil.
func newEvaler(out, report io.Writer, cfg *Config) *eval.Evaler {
	var r *rand.Rand
	if cfg.Seed != 0 {
		r = rand.New(rand.NewSource(cfg.Seed))
	}
	return eval.NewEvaler(eval.Config{
		Out: out, Report: report, Rand: r, MaxCallDepth: cfg.MaxCallDepth})
}

// A flag.Value for integer flags that can tell whether they were given.
type optionalInt struct {
	value int64
	set   bool
}

func (o *optionalInt) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.FormatInt(o.value, 10)
}

func (o *optionalInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return err
	}
	o.value, o.set = v, true
	return nil
}
