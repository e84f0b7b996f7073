package lsp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.dde.sh/pkg/tt"
)

const testURI = lsp.DocumentURI("file:///test.dde")

type clientHandler struct {
	diags chan lsp.PublishDiagnosticsParams
}

func (h clientHandler) Handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Method != "textDocument/publishDiagnostics" || req.Params == nil {
		return
	}
	var params lsp.PublishDiagnosticsParams
	if json.Unmarshal(*req.Params, &params) == nil {
		h.diags <- params
	}
}

type testClient struct {
	t     *testing.T
	conn  *jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) *testClient {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	ctx := context.Background()
	serverConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}),
		handler(newServer()))
	diags := make(chan lsp.PublishDiagnosticsParams, 16)
	clientConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		clientHandler{diags})
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})
	return &testClient{t, clientConn, diags}
}

func (c *testClient) call(method string, params, result any) {
	c.t.Helper()
	err := c.conn.Call(context.Background(), method, params, result)
	if err != nil {
		c.t.Fatalf("%s: %v", method, err)
	}
}

func (c *testClient) open(text string) lsp.PublishDiagnosticsParams {
	c.t.Helper()
	err := c.conn.Notify(context.Background(), "textDocument/didOpen",
		lsp.DidOpenTextDocumentParams{
			TextDocument: lsp.TextDocumentItem{URI: testURI, LanguageID: "dde", Text: text}})
	if err != nil {
		c.t.Fatalf("didOpen: %v", err)
	}
	return c.nextDiags()
}

func (c *testClient) nextDiags() lsp.PublishDiagnosticsParams {
	c.t.Helper()
	select {
	case d := <-c.diags:
		return d
	case <-time.After(5 * time.Second):
		c.t.Fatal("timed out waiting for diagnostics")
		return lsp.PublishDiagnosticsParams{}
	}
}

func position(line, char int) lsp.TextDocumentPositionParams {
	return lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
		Position:     lsp.Position{Line: line, Character: char},
	}
}

func TestInitialize(t *testing.T) {
	c := setup(t)
	var result lsp.InitializeResult
	c.call("initialize", lsp.InitializeParams{}, &result)

	caps := result.Capabilities
	if !caps.HoverProvider {
		t.Errorf("hover not advertised")
	}
	if caps.CompletionProvider == nil {
		t.Errorf("completion not advertised")
	}
	if caps.SignatureHelpProvider == nil ||
		!cmp.Equal(caps.SignatureHelpProvider.TriggerCharacters, []string{"(", ","}) {
		t.Errorf("got signature help provider %v", caps.SignatureHelpProvider)
	}
}

func TestDiagnostics(t *testing.T) {
	c := setup(t)
	if d := c.open("x = 1"); len(d.Diagnostics) != 0 {
		t.Errorf("got diagnostics %v, want none", d.Diagnostics)
	}

	err := c.conn.Notify(context.Background(), "textDocument/didChange",
		lsp.DidChangeTextDocumentParams{
			TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: testURI}},
			ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "x = 1\ny = 'abc"}},
		})
	if err != nil {
		t.Fatalf("didChange: %v", err)
	}
	d := c.nextDiags()
	if d.URI != testURI {
		t.Errorf("got URI %v, want %v", d.URI, testURI)
	}
	if len(d.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(d.Diagnostics))
	}
	if got := d.Diagnostics[0]; got.Source != "lex" || got.Range.Start.Line != 1 || got.Severity != lsp.Error {
		t.Errorf("got diagnostic %+v", got)
	}
}

func TestCompletion(t *testing.T) {
	c := setup(t)
	c.open("add = (a, b) { return a + b }\ntotal = 0\n")

	var items []lsp.CompletionItem
	c.call("textDocument/completion", lsp.CompletionParams{
		TextDocumentPositionParams: position(2, 0)}, &items)

	byLabel := make(map[string]lsp.CompletionItem)
	for _, item := range items {
		byLabel[item.Label] = item
	}
	want := map[string]lsp.CompletionItem{
		"print": {Label: "print", Kind: lsp.CIKFunction,
			Detail: "Built-in function", Documentation: "print(...values)"},
		"add": {Label: "add", Kind: lsp.CIKFunction,
			Detail: "Declared function", Documentation: "add(a, b)"},
		"total": {Label: "total", Kind: lsp.CIKVariable, Detail: "Declared variable"},
	}
	for label, w := range want {
		if diff := cmp.Diff(w, byLabel[label]); diff != "" {
			t.Errorf("completion item %s (-want +got):\n%s", label, diff)
		}
	}
}

func TestSignatureHelp(t *testing.T) {
	c := setup(t)
	c.open("random(1, ")

	var help lsp.SignatureHelp
	c.call("textDocument/signatureHelp", position(0, 10), &help)
	want := lsp.SignatureHelp{
		Signatures: []lsp.SignatureInformation{{
			Label:         "random(min, max, isFloat)",
			Documentation: "Built-in function",
			Parameters: []lsp.ParameterInformation{
				{Label: "min"}, {Label: "max"}, {Label: "isFloat"}},
		}},
		ActiveParameter: 1,
	}
	if diff := cmp.Diff(want, help); diff != "" {
		t.Errorf("signature help (-want +got):\n%s", diff)
	}
}

func TestSignatureHelp_NoCall(t *testing.T) {
	c := setup(t)
	c.open("x = 1")

	var help *lsp.SignatureHelp
	c.call("textDocument/signatureHelp", position(0, 3), &help)
	if help != nil {
		t.Errorf("got %v, want nil", help)
	}
}

func TestHover(t *testing.T) {
	c := setup(t)
	c.open("add = (a, b) { return a + b }\nadd(1, 2)")

	var hover lsp.Hover
	c.call("textDocument/hover", position(1, 1), &hover)
	if len(hover.Contents) == 0 || hover.Contents[0].Value != "add(a, b)" {
		t.Errorf("got hover %+v", hover)
	}
}

func TestUnknownMethod(t *testing.T) {
	c := setup(t)
	err := c.conn.Call(context.Background(), "textDocument/rename", nil, nil)
	if rpcErr, ok := err.(*jsonrpc2.Error); !ok || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("got error %v, want method not found", err)
	}
}

func TestInvalidParams(t *testing.T) {
	c := setup(t)
	err := c.conn.Call(context.Background(), "textDocument/hover", "oops", nil)
	if rpcErr, ok := err.(*jsonrpc2.Error); !ok || rpcErr.Code != jsonrpc2.CodeInvalidParams {
		t.Errorf("got error %v, want invalid params", err)
	}
}

func TestPositionConversion(t *testing.T) {
	s := "ab\r\ncé\U0001F600d"
	tt.Test(t, tt.Fn("lspPositionFromIdx", lspPositionFromIdx),
		tt.Args(s, 0).Rets(lsp.Position{Line: 0, Character: 0}),
		tt.Args(s, 2).Rets(lsp.Position{Line: 0, Character: 2}),
		tt.Args(s, 4).Rets(lsp.Position{Line: 1, Character: 0}),
		// é is 2 bytes, one UTF-16 unit.
		tt.Args(s, 7).Rets(lsp.Position{Line: 1, Character: 2}),
		// The emoji is 4 bytes, two UTF-16 units.
		tt.Args(s, 11).Rets(lsp.Position{Line: 1, Character: 4}),
	)
	tt.Test(t, tt.Fn("lspPositionToIdx", lspPositionToIdx),
		tt.Args(s, lsp.Position{Line: 0, Character: 2}).Rets(2),
		tt.Args(s, lsp.Position{Line: 1, Character: 4}).Rets(11),
		tt.Args(s, lsp.Position{Line: 5, Character: 0}).Rets(len(s)),
	)
}
