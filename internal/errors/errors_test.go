package errors

import (
	"errors"
	"io/fs"
	"testing"
)

func TestBuildDescriptionError(t *testing.T) {
	underlying := errors.New("unexpected end of JSON input")
	err := NewBuildDescriptionError("build/compile_commands.json", underlying)

	if err.Type != ErrorTypeBuildDescription {
		t.Errorf("Expected Type to be ErrorTypeBuildDescription, got %v", err.Type)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "build description build/compile_commands.json: unexpected end of JSON input"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	err = err.WithEntry(3)
	expectedMsg = "build description build/compile_commands.json: entry 3: unexpected end of JSON input"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseError(t *testing.T) {
	underlying := errors.New("no such file")
	err := NewParseError("src/a.cpp", underlying).WithArgs([]string{"-Iinclude"})

	if err.Type != ErrorTypeParse {
		t.Errorf("Expected Type to be ErrorTypeParse, got %v", err.Type)
	}

	if len(err.Args) != 1 || err.Args[0] != "-Iinclude" {
		t.Errorf("Expected args to be recorded, got %v", err.Args)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "parse failed for src/a.cpp: no such file"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestFileError(t *testing.T) {
	err := NewFileError("read", "/root/secret.h", fs.ErrPermission)
	if err.Type != ErrorTypePermission {
		t.Errorf("Expected Type to be ErrorTypePermission, got %v", err.Type)
	}

	err = NewFileError("read", "/missing.h", fs.ErrNotExist)
	if err.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected Type to be ErrorTypeFileNotFound, got %v", err.Type)
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected error to unwrap to fs.ErrNotExist")
	}
}

func TestOutputError(t *testing.T) {
	underlying := errors.New("disk full")
	err := NewOutputError("out.graphml", "graphml", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "writing graphml output to out.graphml: disk full"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be positive")
	err := NewConfigError("performance.workers", "-1", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "config error for field performance.workers (value -1): must be positive"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestKindMismatchError(t *testing.T) {
	err := NewKindMismatchError("c:@S@Foo", "function", "aggregate")

	if err.Type != ErrorTypeKindMismatch {
		t.Errorf("Expected Type to be ErrorTypeKindMismatch, got %v", err.Type)
	}

	expectedMsg := `symbol "c:@S@Foo" is a aggregate, requested as function`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	var target *KindMismatchError
	wrapped := error(err)
	if !errors.As(wrapped, &target) {
		t.Errorf("Expected errors.As to find KindMismatchError")
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")

	multi := NewMultiError([]error{err1, nil, err2})
	if len(multi.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nil, got %d", len(multi.Errors))
	}

	if !errors.Is(multi, err1) || !errors.Is(multi, err2) {
		t.Errorf("Expected multi error to match both wrapped errors")
	}

	single := NewMultiError([]error{err1})
	if single.Error() != "error 1" {
		t.Errorf("Expected single error message, got %q", single.Error())
	}

	empty := NewMultiError(nil)
	if empty.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got %q", empty.Error())
	}
	if empty.ErrorOrNil() != nil {
		t.Errorf("Expected ErrorOrNil to return nil for empty multi error")
	}
	if multi.ErrorOrNil() == nil {
		t.Errorf("Expected ErrorOrNil to return the multi error")
	}
}
