package models

import (
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrMalformedVersion ErrorType = iota
	ErrMalformedControl
	ErrMissingControlFile
	ErrUnsupportedCompression
	ErrMalformedContainer
	ErrMissingRequiredField
	ErrMissingFiles
	ErrBadChecksums
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrMalformedVersion:
		return "MalformedVersion"
	case ErrMalformedControl:
		return "MalformedControl"
	case ErrMissingControlFile:
		return "MissingControlFile"
	case ErrUnsupportedCompression:
		return "UnsupportedCompression"
	case ErrMalformedContainer:
		return "MalformedContainer"
	case ErrMissingRequiredField:
		return "MissingRequiredField"
	case ErrMissingFiles:
		return "MissingFiles"
	case ErrBadChecksums:
		return "BadChecksums"
	default:
		return "Unknown"
	}
}

// InspectError represents an error while inspecting a package file or a
// source description document. Path names the offending file when known.
type InspectError struct {
	Type ErrorType
	Path string
	Err  error
}

// Error implements the error interface
func (e *InspectError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *InspectError) Unwrap() error {
	return e.Err
}

// NewInspectError builds an InspectError from a formatted message.
func NewInspectError(t ErrorType, path, format string, args ...interface{}) *InspectError {
	return &InspectError{Type: t, Path: path, Err: fmt.Errorf(format, args...)}
}

// Mismatch records a single checksum disagreement for one file under one
// digest algorithm.
type Mismatch struct {
	Filename  string
	Algorithm string
	Expected  string
	Actual    string
}

// MissingFilesError reports manifest entries whose files are absent on
// disk, in manifest order.
type MissingFilesError struct {
	Files []string
}

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("[%s] files referenced but not found: %s",
		ErrMissingFiles, strings.Join(e.Files, ", "))
}

// BadChecksumsError reports every (file, algorithm) pair whose recomputed
// digest disagrees with the declared one.
type BadChecksumsError struct {
	Mismatches []Mismatch
}

func (e *BadChecksumsError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Filename, m.Algorithm))
	}
	return fmt.Sprintf("[%s] checksum mismatches: %s",
		ErrBadChecksums, strings.Join(parts, ", "))
}
