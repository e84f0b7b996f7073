// Dde runs scripts written in the dde language. Given a script file or code
// with -c, it evaluates every statement and reports the final result and the
// global environment. Without arguments on a terminal it starts a REPL, and
// with -lsp it serves editors as a language server.
package main

import (
	"os"

	"src.dde.sh/pkg/buildinfo"
	"src.dde.sh/pkg/lsp"
	"src.dde.sh/pkg/prog"
	"src.dde.sh/pkg/run"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(&buildinfo.Program{}, &lsp.Program{}, &run.Program{})))
}
