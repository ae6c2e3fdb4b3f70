package validation

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("permission denied")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"compilation", &CompilationError{Message: "PDF was not generated"}, "compile: PDF was not generated"},
		{"compilation with cause", &CompilationError{Message: "timed out", Cause: cause}, "compile: timed out: permission denied"},
		{"input", &InputError{Path: "cv.tex", Cause: fs.ErrNotExist}, "cannot read cv.tex: file does not exist"},
		{"workspace", &WorkspaceError{Op: "create temp directory", Cause: cause}, "compile workspace: create temp directory: permission denied"},
		{"workspace with path", &WorkspaceError{Op: "write", Path: "out/cv.pdf", Cause: cause}, "compile workspace: write out/cv.pdf: permission denied"},
		{"pdf", &PDFError{Path: "cv.pdf", Cause: cause}, "unreadable PDF cv.pdf: permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	assert.ErrorIs(t, &InputError{Path: "cv.tex", Cause: fs.ErrNotExist}, fs.ErrNotExist)
	assert.ErrorIs(t, &WorkspaceError{Op: "write", Cause: fs.ErrPermission}, fs.ErrPermission)
	assert.ErrorIs(t, &PDFError{Path: "cv.pdf", Cause: fs.ErrClosed}, fs.ErrClosed)
}
