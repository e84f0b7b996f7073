// Package lsp implements a language server for dde.
package lsp

import (
	"context"
	"errors"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"src.dde.sh/pkg/prog"
)

// Program is the LSP subprogram.
type Program struct {
	run bool
}

// RegisterFlags registers the -lsp flag.
func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "lsp", false, "run language server instead of a script")
}

// Run serves the language server protocol over stdin and stdout until the
// client disconnects. It returns [prog.ErrNextProgram] unless -lsp is given.
func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Println("starting language server")
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(transport{fds[0], fds[1]}, jsonrpc2.VSCodeObjectCodec{}),
		handler(newServer()))
	<-conn.DisconnectNotify()
	logger.Println("client disconnected")
	return nil
}

// Joins the input and output files of the process into the
// io.ReadWriteCloser the JSON-RPC stream needs.
type transport struct{ in, out *os.File }

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	return errors.Join(c.in.Close(), c.out.Close())
}
