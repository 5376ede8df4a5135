// Package security screens files before the front-end parses them. Build
// directories often hold precompiled headers and objects next to sources,
// and a compile database or include path can point at them.
package security

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// DefaultMaxSizeKB is the largest source file accepted by default
const DefaultMaxSizeKB = 16 * 1024

// ErrBinary is wrapped by every rejection of non-text content
var ErrBinary = errors.New("file appears to be binary")

// FileValidator rejects files that are not C or C++ source text
type FileValidator struct {
	MaxSize    int64 // bytes; 0 disables the size check
	HeaderSize int   // how much of the file is sampled for binary content
}

func NewFileValidator(maxSizeKB int64) *FileValidator {
	return &FileValidator{
		MaxSize:    maxSizeKB * 1024,
		HeaderSize: 64 * 1024,
	}
}

// ReadSource reads path after checking its size, then validates the content
func (fv *FileValidator) ReadSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fv.MaxSize > 0 && info.Size() > fv.MaxSize {
		return nil, fmt.Errorf("file is %d KB, limit is %d KB", info.Size()/1024, fv.MaxSize/1024)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := fv.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// signatures of files commonly found beside sources in build trees
var signatures = []struct {
	name  string
	magic []byte
}{
	{"ELF object", []byte{0x7F, 'E', 'L', 'F'}},
	{"Mach-O object", []byte{0xCF, 0xFA, 0xED, 0xFE}},
	{"Mach-O object", []byte{0xCE, 0xFA, 0xED, 0xFE}},
	{"PE executable", []byte{'M', 'Z'}},
	{"static library", []byte("!<arch>\n")},
	{"clang precompiled header", []byte("CPCH")},
	{"GCC precompiled header", []byte("gpch")},
	{"LLVM bitcode", []byte{'B', 'C', 0xC0, 0xDE}},
}

// Validate checks content already in memory
func (fv *FileValidator) Validate(data []byte) error {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.magic) {
			return fmt.Errorf("%w (%s)", ErrBinary, sig.name)
		}
	}

	header := data
	if fv.HeaderSize > 0 && len(header) > fv.HeaderSize {
		header = header[:fv.HeaderSize]
	}
	if isBinaryData(header) {
		return ErrBinary
	}
	return nil
}

// isBinaryData reports NUL bytes or a high share of control characters
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range data {
		// control characters other than tab, LF, VT, FF and CR, plus DEL
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}
