package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/eval"
	"src.dde.sh/pkg/lex"
	"src.dde.sh/pkg/parse"
)

type script struct {
	name, code string
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readScript(arg string) (script, error) {
	name, err := filepath.Abs(arg)
	if err != nil {
		return script{}, fmt.Errorf("cannot get full path of script %q: %w", arg, err)
	}
	bytes, err := os.ReadFile(name)
	if err != nil {
		return script{}, fmt.Errorf("cannot read script %q: %w", name, err)
	}
	if !utf8.Valid(bytes) {
		return script{}, fmt.Errorf("cannot read script %q: %w", name, errSourceNotUTF8)
	}
	return script{name, string(bytes)}, nil
}

func (s script) source() parse.Source {
	return parse.Source{Name: s.name, Code: s.code}
}

// Parses the script, and prints either the syntax tree or the errors.
func compileOnly(fds [3]*os.File, s script, jsonOutput bool) int {
	nodes, err := parse.Parse(s.source())
	if jsonOutput {
		fmt.Fprintf(fds[1], "%s\n", errorsToJSON(err))
	} else if err != nil {
		diag.ShowError(fds[2], err)
	} else {
		parse.Pprint(fds[1], nodes)
	}
	if err != nil {
		return 2
	}
	return 0
}

// Evaluates the script and prints the report.
func runScript(fds [3]*os.File, s script, cfg *Config, jsonOutput bool) int {
	var rep report
	var ev *eval.Evaler
	if jsonOutput {
		// Printed output becomes part of the JSON object, and failed
		// statements are only listed in its "errors" field.
		jr := &jsonReport{}
		ev = newEvaler(&jr.output, io.Discard, cfg)
		rep = jr
	} else {
		ev = newEvaler(fds[1], nil, cfg)
		rep = newTextReport(cfg.Color, fds[1])
	}
	res, err := ev.Eval(s.source())
	if err != nil {
		diag.ShowError(fds[2], err)
		return 2
	}
	if err := rep.write(fds[1], res); err != nil {
		fmt.Fprintln(fds[2], err)
		return 2
	}
	switch {
	case res.Exited:
		return res.ExitCode
	case len(res.Errors) > 0:
		return 1
	}
	return 0
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts lex and parse errors into JSON.
func errorsToJSON(err error) []byte {
	converted := []errorInJSON{}
	for _, e := range diag.UnpackErrors[lex.ErrorTag](err) {
		converted = append(converted,
			errorInJSON{e.Context.Name, e.Context.From, e.Context.To, e.Message})
	}
	for _, e := range diag.UnpackErrors[parse.ErrorTag](err) {
		converted = append(converted,
			errorInJSON{e.Context.Name, e.Context.From, e.Context.To, e.Message})
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
