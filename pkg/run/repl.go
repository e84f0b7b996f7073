package run

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/eval"
	"src.dde.sh/pkg/eval/vals"
	"src.dde.sh/pkg/parse"
	"src.dde.sh/pkg/prog"
)

const (
	promptMain = "dde> "
	promptCont = "...> "
)

type prompter interface {
	Prompt(prompt string) (string, error)
}

// Runs the REPL. All inputs are evaluated by the same Evaler, so bindings
// persist between them. Input is read by liner from the process's terminal
// rather than fds[0].
func repl(fds [3]*os.File, cfg *Config) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(cfg.HistoryFile)
			if err != nil {
				logger.Println("cannot save history:", err)
				return
			}
			defer f.Close()
			ln.WriteHistory(f)
		}()
	}

	fmt.Fprintln(fds[1], "Type :quit to exit.")
	s := &session{ev: newEvaler(fds[1], nil, cfg), out: fds[1], errOut: fds[2]}
	for {
		code, err := readInput(ln)
		if err == liner.ErrPromptAborted {
			continue
		} else if err != nil {
			if err != io.EOF {
				return err
			}
			fmt.Fprintln(fds[1])
			return nil
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if quit, exit := s.handle(code); quit {
			return prog.Exit(exit)
		}
	}
}

// Reads one input, which may span multiple lines when the code read so far is
// incomplete.
func readInput(p prompter) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if err != nil {
			if b.Len() > 0 && err == io.EOF {
				// Evaluate what has been read; the next read will return EOF
				// again.
				return b.String(), nil
			}
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		_, err = parse.Parse(parse.Source{Name: "[interactive]", Code: b.String()})
		// An empty line ends incomplete input too, so that the error can be
		// shown.
		if err == nil || !parse.IsPartial(err) || strings.TrimSpace(line) == "" {
			return b.String(), nil
		}
	}
}

type session struct {
	ev     *eval.Evaler
	out    io.Writer
	errOut io.Writer
	n      int
}

// Handles one input. It returns true when the REPL should stop, along with
// the exit code.
func (s *session) handle(code string) (quit bool, exit int) {
	if strings.HasPrefix(strings.TrimSpace(code), ":") {
		switch strings.TrimSpace(code) {
		case ":quit":
			return true, 0
		default:
			fmt.Fprintln(s.out, "unknown command. Type :quit to exit.")
		}
		return false, 0
	}
	s.n++
	res, err := s.ev.Eval(parse.Source{Name: fmt.Sprintf("[interactive %d]", s.n), Code: code})
	if err != nil {
		diag.ShowError(s.errOut, err)
		return false, 0
	}
	if res.Exited {
		return true, res.ExitCode
	}
	if res.HasValue && len(res.Errors) == 0 {
		fmt.Fprintln(s.out, vals.Repr(res.Value))
	}
	return false, 0
}

var _ prompter = (*liner.State)(nil)
