package run

import (
	"io"
	"strings"
	"testing"

	"src.dde.sh/pkg/eval"
)

type fakePrompter struct {
	lines   []string
	prompts []string
}

func (p *fakePrompter) Prompt(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

var readInputTests = []struct {
	name        string
	lines       []string
	wantCode    string
	wantPrompts []string
	wantErr     error
}{
	{
		name:        "complete line",
		lines:       []string{"x = 1", "y = 2"},
		wantCode:    "x = 1",
		wantPrompts: []string{promptMain},
	},
	{
		name:        "continuation",
		lines:       []string{"f = (a) {", "return a", "}"},
		wantCode:    "f = (a) {\nreturn a\n}",
		wantPrompts: []string{promptMain, promptCont, promptCont},
	},
	{
		name:        "empty line ends incomplete input",
		lines:       []string{"x = [1,", ""},
		wantCode:    "x = [1,\n",
		wantPrompts: []string{promptMain, promptCont},
	},
	{
		name:        "non-partial error",
		lines:       []string{"x = )"},
		wantCode:    "x = )",
		wantPrompts: []string{promptMain},
	},
	{
		name:        "EOF after incomplete input",
		lines:       []string{"print(1,"},
		wantCode:    "print(1,",
		wantPrompts: []string{promptMain, promptCont},
	},
	{
		name:        "EOF",
		lines:       nil,
		wantErr:     io.EOF,
		wantPrompts: []string{promptMain},
	},
}

func TestReadInput(t *testing.T) {
	for _, test := range readInputTests {
		t.Run(test.name, func(t *testing.T) {
			p := &fakePrompter{lines: test.lines}
			code, err := readInput(p)
			if code != test.wantCode || err != test.wantErr {
				t.Errorf("got (%q, %v), want (%q, %v)", code, err, test.wantCode, test.wantErr)
			}
			if strings.Join(p.prompts, "|") != strings.Join(test.wantPrompts, "|") {
				t.Errorf("got prompts %q, want %q", p.prompts, test.wantPrompts)
			}
		})
	}
}

func newTestSession() (*session, *strings.Builder, *strings.Builder) {
	var out, errOut strings.Builder
	ev := eval.NewEvaler(eval.Config{Out: &out})
	return &session{ev: ev, out: &out, errOut: &errOut}, &out, &errOut
}

func TestSession(t *testing.T) {
	s, out, errOut := newTestSession()

	for _, code := range []string{"x = [1, 2]", "x.push(3)", "x", "y", "z = (", ":help"} {
		if quit, _ := s.handle(code); quit {
			t.Fatalf("handle(%q) quits", code)
		}
	}
	wantOut := "[1, 2]\n" +
		"[1, 2, 3]\n" +
		"[1, 2, 3]\n" +
		"Error at statement 1 (line 1): undefined variable: y\n" +
		"unknown command. Type :quit to exit.\n"
	if out.String() != wantOut {
		t.Errorf("got output %q, want %q", out.String(), wantOut)
	}
	if !strings.Contains(errOut.String(), "Parse error") {
		t.Errorf("got error output %q, want parse error", errOut.String())
	}
}

func TestSession_Quit(t *testing.T) {
	s, _, _ := newTestSession()
	if quit, exit := s.handle(":quit"); !quit || exit != 0 {
		t.Errorf("got (%v, %v), want (true, 0)", quit, exit)
	}
	if quit, exit := s.handle("exit(5)"); !quit || exit != 5 {
		t.Errorf("got (%v, %v), want (true, 5)", quit, exit)
	}
}
