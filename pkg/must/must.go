// Package must turns error returns into panics. It is meant for tests, where
// a failed setup step should abort the test right away.
package must

import (
	"io"
	"os"
	"path/filepath"
)

// OK panics with err if it is not nil.
func OK(err error) {
	if err != nil {
		panic(err)
	}
}

// OK1 returns v, or panics with err if it is not nil.
func OK1[T any](v T, err error) T {
	OK(err)
	return v
}

// OK2 returns v1 and v2, or panics with err if it is not nil.
func OK2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	OK(err)
	return v1, v2
}

// Pipe returns the read and write ends of a new pipe.
func Pipe() (r, w *os.File) {
	return OK2(os.Pipe())
}

// ReadAllAndClose reads r until EOF and closes it.
func ReadAllAndClose(r io.ReadCloser) []byte {
	data := OK1(io.ReadAll(r))
	OK(r.Close())
	return data
}

// WriteFile writes data to filename, creating the parent directories first.
func WriteFile(filename, data string) {
	OK(os.MkdirAll(filepath.Dir(filename), 0o700))
	OK(os.WriteFile(filename, []byte(data), 0o600))
}
