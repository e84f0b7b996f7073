package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type testErrorTag struct{}

func (testErrorTag) ErrorTag() string { return "test error" }

type otherErrorTag struct{}

func (otherErrorTag) ErrorTag() string { return "other error" }

func makeError() *Error[testErrorTag] {
	src := "a = 1\nb = bad\n"
	return &Error[testErrorTag]{
		Message: "bad value",
		Context: *NewContext("[test]", src, Ranging{10, 13}),
	}
}

func TestError(t *testing.T) {
	setCulpritMarkers(t, "<", ">")
	setMessageMarkers(t, "{", "}")

	err := makeError()

	wantErrorString := "test error: [test]:2:5: bad value"
	if gotErrorString := err.Error(); gotErrorString != wantErrorString {
		t.Errorf("Error() -> %q, want %q", gotErrorString, wantErrorString)
	}

	wantRanging := Ranging{From: 10, To: 13}
	if gotRanging := err.Range(); gotRanging != wantRanging {
		t.Errorf("Range() -> %v, want %v", gotRanging, wantRanging)
	}

	wantShow := lines(
		"Test error: {bad value}",
		"  [test], line 2: b = <bad>",
	)
	if gotShow := err.Show(""); gotShow != wantShow {
		t.Errorf("Show() -> %q, want %q", gotShow, wantShow)
	}
}

func TestUnpackErrors(t *testing.T) {
	err := makeError()

	if got := UnpackErrors[testErrorTag](nil); got != nil {
		t.Errorf("UnpackErrors(nil) -> %v, want nil", got)
	}
	if got := UnpackErrors[testErrorTag](err); len(got) != 1 || got[0] != err {
		t.Errorf("UnpackErrors(err) -> %v, want [err]", got)
	}
	if got := UnpackErrors[testErrorTag](fmt.Errorf("wrapped: %w", err)); len(got) != 1 {
		t.Errorf("UnpackErrors(wrapped) -> %v, want one error", got)
	}
	joined := errors.Join(err, errors.New("plain"), err)
	if got := UnpackErrors[testErrorTag](joined); len(got) != 2 {
		t.Errorf("UnpackErrors(joined) -> %v, want two errors", got)
	}
	if got := UnpackErrors[otherErrorTag](err); got != nil {
		t.Errorf("UnpackErrors with another tag -> %v, want nil", got)
	}
}

func TestShowError(t *testing.T) {
	var sb strings.Builder
	ShowError(&sb, makeError())
	got := sb.String()
	if strings.Contains(got, "\033") {
		t.Errorf("ShowError to a non-terminal kept escape sequences: %q", got)
	}
	if !strings.HasPrefix(got, "Test error: bad value\n") {
		t.Errorf("ShowError wrote %q", got)
	}

	sb.Reset()
	ShowError(&sb, errors.New("plain error"))
	if got := sb.String(); got != "plain error\n" {
		t.Errorf("ShowError(plain) wrote %q, want %q", got, "plain error\n")
	}
}
