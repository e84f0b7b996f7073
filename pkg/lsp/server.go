package lsp

import (
	"context"
	"encoding/json"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.dde.sh/pkg/analysis"
	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/lex"
	"src.dde.sh/pkg/logutil"
	"src.dde.sh/pkg/parse"
)

var logger = logutil.GetLogger("[lsp] ")

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":                 s.initialize,
		"textDocument/didOpen":       s.didOpen,
		"textDocument/didChange":     s.didChange,
		"textDocument/didClose":      s.didClose,
		"textDocument/hover":         s.hover,
		"textDocument/completion":    s.completion,
		"textDocument/signatureHelp": s.signatureHelp,

		// Required by the protocol.
		"initialized": noop,
		"shutdown":    noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		logger.Println("request:", req.Method)
		fn, ok := methods[req.Method]
		if !ok {
			logger.Println("unknown method:", req.Method)
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		result, err := fn(ctx, conn, params)
		if err != nil {
			logger.Printf("%s failed: %v", req.Method, err)
		}
		return result, err
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{},
			SignatureHelpProvider: &lsp.SignatureHelpOptions{
				TriggerCharacters: []string{"(", ","},
			},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[len(params.ContentChanges)-1].Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	decl, ok := analysis.DeclAt(content, lspPositionToIdx(content, params.Position))
	if !ok {
		return nil, nil
	}
	return lsp.Hover{
		Contents: []lsp.MarkedString{
			{Language: "dde", Value: decl.Signature()},
			lsp.RawMarkedString(decl.Kind.Detail()),
		},
	}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	decls := analysis.Completions(s.content[params.TextDocument.URI])
	items := make([]lsp.CompletionItem, len(decls))
	for i, decl := range decls {
		items[i] = lsp.CompletionItem{
			Label:  decl.Name,
			Kind:   completionKind(decl.Kind),
			Detail: decl.Kind.Detail(),
		}
		if decl.Kind != analysis.Variable {
			items[i].Documentation = decl.Signature()
		}
	}
	return items, nil
}

func completionKind(k analysis.DeclKind) lsp.CompletionItemKind {
	if k == analysis.Variable {
		return lsp.CIKVariable
	}
	return lsp.CIKFunction
}

func (s *server) signatureHelp(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	sig, ok := analysis.SignatureAt(content, lspPositionToIdx(content, params.Position))
	if !ok {
		return nil, nil
	}
	paramInfos := make([]lsp.ParameterInformation, len(sig.Params))
	for i, p := range sig.Params {
		paramInfos[i] = lsp.ParameterInformation{Label: p}
	}
	return lsp.SignatureHelp{
		Signatures: []lsp.SignatureInformation{{
			Label:         sig.Signature(),
			Documentation: sig.Kind.Detail(),
			Parameters:    paramInfos,
		}},
		ActiveParameter: sig.ActiveParam,
	}, nil
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	err := conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(uri, content)})
	if err != nil {
		logger.Println("publishing diagnostics:", err)
	}
}

func diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	_, err := parse.Parse(parse.Source{Name: string(uri), Code: content})
	if err == nil {
		return []lsp.Diagnostic{}
	}

	var diags []lsp.Diagnostic
	add := func(r diag.Ranger, source, msg string) {
		diags = append(diags, lsp.Diagnostic{
			Range:    lspRangeFromRange(content, r),
			Severity: lsp.Error,
			Source:   source,
			Message:  msg,
		})
	}
	for _, e := range diag.UnpackErrors[lex.ErrorTag](err) {
		add(e, "lex", e.Message)
	}
	for _, e := range diag.UnpackErrors[parse.ErrorTag](err) {
		add(e, "parse", e.Message)
	}
	return diags
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
