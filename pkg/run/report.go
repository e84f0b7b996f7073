package run

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/eval"
	"src.dde.sh/pkg/eval/vals"
)

const jsonIndent = "  "

type report interface {
	write(w io.Writer, res *eval.Result) error
}

// Prints the result and the environment as two sections with headers. Failed
// statements have already been reported by the Evaler.
type textReport struct {
	header *color.Color
}

func newTextReport(mode string, out io.Writer) textReport {
	header := color.New(color.FgCyan, color.Bold)
	if mode == ColorAlways || (mode == ColorAuto && diag.IsTerminal(out)) {
		header.EnableColor()
	} else {
		header.DisableColor()
	}
	return textReport{header}
}

func (r textReport) write(w io.Writer, res *eval.Result) error {
	result := "undefined"
	if res.HasValue {
		var err error
		result, err = vals.JSON(res.Value, jsonIndent)
		if err != nil {
			return fmt.Errorf("cannot show result: %w", err)
		}
	}
	env, err := vals.JSONMap(res.Env.Names(), res.Env.Value, jsonIndent)
	if err != nil {
		return fmt.Errorf("cannot show environment: %w", err)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.header.Sprint("=== Final Result ==="))
	fmt.Fprintln(w, result)
	fmt.Fprintln(w, r.header.Sprint("=== Environment ==="))
	fmt.Fprintln(w, env)
	return nil
}

// Prints one JSON object with all the information of the result, including
// the output of print.
type jsonReport struct {
	output strings.Builder
}

type statementErrorInJSON struct {
	Statement int    `json:"statement"`
	Line      int    `json:"line"`
	Message   string `json:"message"`
}

func (r *jsonReport) write(w io.Writer, res *eval.Result) error {
	var result any
	if res.HasValue {
		var err error
		result, err = vals.ToJSONValue(res.Value)
		if err != nil {
			return fmt.Errorf("cannot show result: %w", err)
		}
	}
	env, err := vals.ToJSONObject(res.Env.Names(), res.Env.Value)
	if err != nil {
		return fmt.Errorf("cannot show environment: %w", err)
	}
	errs := make([]statementErrorInJSON, len(res.Errors))
	for i, e := range res.Errors {
		errs[i] = statementErrorInJSON{e.Index, e.Line(), e.Err.Message}
	}
	s, err := vals.MarshalJSON(map[string]any{
		"result":      result,
		"output":      r.output.String(),
		"environment": env,
		"errors":      errs,
		"exited":      res.Exited,
		"exitCode":    res.ExitCode,
	}, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}
