package progtest

import (
	"io"
	"os"
	"testing"

	"src.dde.sh/pkg/prog"
)

// Verify we don't deadlock if more output is written to stdout than can be
// buffered by a pipe.
func TestOutputCaptureDoesNotDeadlock(t *testing.T) {
	Test(t, noisyProgram{},
		ThatDde().WritesStdoutContaining("hello"),
	)
}

func TestStdin(t *testing.T) {
	Test(t, &echoProgram{},
		ThatDde().WithStdin("some input").WritesStdout("some input"),
		ThatDde("-fail").WithStdin("x").ExitsWith(3).WritesStderr(""),
	)
}

func TestRun(t *testing.T) {
	exit, stdout, stderr := Run(&echoProgram{}, "-fail")
	if exit != 3 || stdout != "" || stderr != "" {
		t.Errorf("got (%d, %q, %q), want (3, \"\", \"\")", exit, stdout, stderr)
	}
}

type noisyProgram struct{}

func (noisyProgram) RegisterFlags(f *prog.FlagSet) {}

func (noisyProgram) Run(fds [3]*os.File, args []string) error {
	// We need enough data to verify whether we're likely to deadlock due to
	// filling the pipe before the test completes. Pipes typically buffer 8 to
	// 128 KiB.
	bytes := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	for i := 0; i < 128*1024/len(bytes); i++ {
		fds[1].Write(bytes)
	}
	fds[1].WriteString("hello")
	return nil
}

type echoProgram struct{ fail bool }

func (p *echoProgram) RegisterFlags(f *prog.FlagSet) {
	f.BoolVar(&p.fail, "fail", false, "exit with 3 without reading stdin")
}

func (p *echoProgram) Run(fds [3]*os.File, args []string) error {
	if p.fail {
		return prog.Exit(3)
	}
	_, err := io.Copy(fds[1], fds[0])
	return err
}
