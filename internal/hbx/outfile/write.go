package outfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
)

// ErrNotGenerated is returned when the file at the output path was not
// written by a generator.
var ErrNotGenerated = errors.New("refusing to overwrite a file without a generated code header")

var generatedRx = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// WriteGeneratedFile writes src to outPath. An existing file is only
// overwritten when it carries a generated code header. Unchanged files are
// left alone; the result reports whether the file was written.
func WriteGeneratedFile(outPath string, src []byte) (bool, error) {
	old, err := os.ReadFile(outPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return false, err
	case bytes.Equal(old, src):
		return false, nil
	case !IsGenerated(old):
		return false, fmt.Errorf("%s: %w", outPath, ErrNotGenerated)
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// IsGenerated reports whether src has a generated code header before its
// package clause.
func IsGenerated(src []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := sc.Bytes()
		if generatedRx.Match(line) {
			return true
		}
		if bytes.HasPrefix(line, []byte("package ")) {
			return false
		}
	}
	return false
}
