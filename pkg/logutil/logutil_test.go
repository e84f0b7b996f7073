package logutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	logger := GetLogger("[test] ")
	var sb strings.Builder
	SetOutput(&sb)
	t.Cleanup(func() { SetOutput(io.Discard) })

	logger.Println("hello")
	if got := sb.String(); !strings.Contains(got, "[test] ") || !strings.HasSuffix(got, "hello\n") {
		t.Errorf("got log output %q", got)
	}
}

func TestSetOutputFile(t *testing.T) {
	logger := GetLogger("[test] ")
	fname := filepath.Join(t.TempDir(), "log")
	if err := SetOutputFile(fname); err != nil {
		t.Fatal(err)
	}
	logger.Println("to file")
	// Closes the file.
	SetOutputFile("")
	logger.Println("discarded")

	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if s := string(data); !strings.Contains(s, "to file") || strings.Contains(s, "discarded") {
		t.Errorf("got log file content %q", s)
	}
}

func TestSetOutputFile_Error(t *testing.T) {
	err := SetOutputFile(filepath.Join(t.TempDir(), "no-such-dir", "log"))
	if err == nil {
		t.Errorf("want error when directory doesn't exist")
	}
}
