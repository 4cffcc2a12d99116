// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrMissingInputFile is returned when an input path does not exist and the
	// MissingAbortWithError policy is active.
	ErrMissingInputFile = errors.New("input file does not exist")
	// ErrOutputFileExists is returned when an output path already exists and the
	// ExistingAbortWithError policy is active.
	ErrOutputFileExists = errors.New("output file already exists")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrBadRedirect is returned when a redirect target is used in a position
	// that does not accept it, e.g. MergeWithStdout on stdin.
	ErrBadRedirect = errors.New("redirect target not valid here")
)

// MissingFilePolicy governs the outcome of starting a command whose input
// path does not exist.
type MissingFilePolicy int

const (
	// MissingAbortSilently declines the start and returns no process. Default.
	MissingAbortSilently MissingFilePolicy = iota
	// MissingAbortWithError fails the start with ErrMissingInputFile.
	MissingAbortWithError
	// MissingCreateEmpty creates an empty file and proceeds.
	MissingCreateEmpty
)

// ExistingFilePolicy governs the outcome of starting a command whose output
// or error path already exists.
type ExistingFilePolicy int

const (
	// ExistingAbortSilently declines the start and returns no process. Default.
	ExistingAbortSilently ExistingFilePolicy = iota
	// ExistingAbortWithError fails the start with ErrOutputFileExists.
	ExistingAbortWithError
	// ExistingTruncate truncates the file and overwrites it.
	ExistingTruncate
	// ExistingAppend appends to the file.
	ExistingAppend
)

type redirectKind int

const (
	redirectInherit redirectKind = iota
	redirectDiscard
	redirectStream
	redirectPath
	redirectPipe
	redirectMerge
)

// Redirect is one of the accepted targets for a standard stream: inherit,
// discard, an explicit open stream, a file-system path or a fresh pipe.
// Stderr additionally accepts MergeWithStdout. The zero value is Inherit.
type Redirect struct {
	kind     redirectKind
	file     *os.File
	path     string
	missing  MissingFilePolicy
	existing ExistingFilePolicy
}

// Inherit shares the calling process's corresponding stream.
func Inherit() Redirect { return Redirect{kind: redirectInherit} }

// Discard attaches the null device.
func Discard() Redirect { return Redirect{kind: redirectDiscard} }

// Stream attaches an explicit open file. The caller retains ownership.
func Stream(f *os.File) Redirect { return Redirect{kind: redirectStream, file: f} }

// Path attaches a file-system path, opened for reading when used as stdin
// and for writing when used as stdout or stderr. The default policies abort
// the start silently; use Missing and Existing to choose another outcome.
func Path(name string) Redirect { return Redirect{kind: redirectPath, path: name} }

// Pipe requests a freshly created pipe-backed stream, retrievable from the
// started command through Stdin, Stdout or Stderr.
func Pipe() Redirect { return Redirect{kind: redirectPipe} }

// MergeWithStdout routes stderr to wherever stdout was routed. Only valid as
// a stderr target.
func MergeWithStdout() Redirect { return Redirect{kind: redirectMerge} }

// Missing returns a copy of the redirect with the given missing-input-file policy.
func (r Redirect) Missing(p MissingFilePolicy) Redirect {
	r.missing = p
	return r
}

// Existing returns a copy of the redirect with the given existing-output-file policy.
func (r Redirect) Existing(p ExistingFilePolicy) Redirect {
	r.existing = p
	return r
}

// resolved is the outcome of resolving one redirect target. child is the file
// handed to the spawned process; caller is the near end of a pipe, if any.
// ownsChild records whether Start must close child after the spawn.
type resolved struct {
	child     *os.File
	caller    *os.File
	ownsChild bool
	declined  bool
}

func (r resolved) close() {
	if r.ownsChild && r.child != nil {
		_ = r.child.Close()
	}

	if r.caller != nil {
		_ = r.caller.Close()
	}
}

// precheckInput applies the missing-file policy of a path redirect in the
// stdin position without opening anything, so a decline or policy error is
// known before any other stream's target has been created or truncated.
func precheckInput(r Redirect) (declined bool, err error) {
	if r.kind != redirectPath {
		return false, nil
	}

	if _, err := os.Stat(r.path); err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("stat %s: %w", r.path, err)
		}

		switch r.missing {
		case MissingAbortSilently:
			return true, nil
		case MissingAbortWithError:
			return false, fmt.Errorf("%w: %s", ErrMissingInputFile, r.path)
		case MissingCreateEmpty:
		}
	}

	return false, nil
}

// precheckOutput is precheckInput for the stdout and stderr positions,
// applying the existing-file policy.
func precheckOutput(r Redirect) (declined bool, err error) {
	if r.kind != redirectPath {
		return false, nil
	}

	if _, err := os.Stat(r.path); err == nil {
		switch r.existing {
		case ExistingAbortSilently:
			return true, nil
		case ExistingAbortWithError:
			return false, fmt.Errorf("%w: %s", ErrOutputFileExists, r.path)
		case ExistingTruncate, ExistingAppend:
		}
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", r.path, err)
	}

	return false, nil
}

// resolveInput resolves a redirect in the stdin position.
func resolveInput(r Redirect) (resolved, error) {
	switch r.kind {
	case redirectInherit:
		return resolved{child: os.Stdin}, nil

	case redirectDiscard:
		f, err := os.OpenFile(os.DevNull, os.O_RDONLY, 0)
		if err != nil {
			return resolved{}, fmt.Errorf("opening %s: %w", os.DevNull, err)
		}

		return resolved{child: f, ownsChild: true}, nil

	case redirectStream:
		return resolved{child: r.file}, nil

	case redirectPath:
		return resolveInputPath(r)

	case redirectPipe:
		pr, pw, err := os.Pipe()
		if err != nil {
			return resolved{}, errors.Join(ErrFailedToCreatePipe, err)
		}

		return resolved{child: pr, caller: pw, ownsChild: true}, nil

	default:
		return resolved{}, fmt.Errorf("%w: stdin", ErrBadRedirect)
	}
}

func resolveInputPath(r Redirect) (resolved, error) {
	if _, err := os.Stat(r.path); err != nil {
		if !os.IsNotExist(err) {
			return resolved{}, fmt.Errorf("stat %s: %w", r.path, err)
		}

		switch r.missing {
		case MissingAbortSilently:
			return resolved{declined: true}, nil
		case MissingAbortWithError:
			return resolved{}, fmt.Errorf("%w: %s", ErrMissingInputFile, r.path)
		case MissingCreateEmpty:
			// Fall through to OpenFile with O_CREATE below.
		}
	}

	flag := os.O_RDONLY
	if r.missing == MissingCreateEmpty {
		flag |= os.O_CREATE
	}

	f, err := os.OpenFile(r.path, flag, 0o644)
	if err != nil {
		return resolved{}, fmt.Errorf("opening %s: %w", r.path, err)
	}

	return resolved{child: f, ownsChild: true}, nil
}

// resolveOutput resolves a redirect in the stdout or stderr position. The
// inherited stream to use is passed in so stdout and stderr resolve identically.
func resolveOutput(r Redirect, inherited *os.File) (resolved, error) {
	switch r.kind {
	case redirectInherit:
		return resolved{child: inherited}, nil

	case redirectDiscard:
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return resolved{}, fmt.Errorf("opening %s: %w", os.DevNull, err)
		}

		return resolved{child: f, ownsChild: true}, nil

	case redirectStream:
		return resolved{child: r.file}, nil

	case redirectPath:
		return resolveOutputPath(r)

	case redirectPipe:
		pr, pw, err := os.Pipe()
		if err != nil {
			return resolved{}, errors.Join(ErrFailedToCreatePipe, err)
		}

		return resolved{child: pw, caller: pr, ownsChild: true}, nil

	default:
		return resolved{}, fmt.Errorf("%w: output", ErrBadRedirect)
	}
}

func resolveOutputPath(r Redirect) (resolved, error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL

	if _, err := os.Stat(r.path); err == nil {
		switch r.existing {
		case ExistingAbortSilently:
			return resolved{declined: true}, nil
		case ExistingAbortWithError:
			return resolved{}, fmt.Errorf("%w: %s", ErrOutputFileExists, r.path)
		case ExistingTruncate:
			flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		case ExistingAppend:
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
	} else if !os.IsNotExist(err) {
		return resolved{}, fmt.Errorf("stat %s: %w", r.path, err)
	}

	f, err := os.OpenFile(r.path, flag, 0o644)
	if err != nil {
		return resolved{}, fmt.Errorf("opening %s: %w", r.path, err)
	}

	return resolved{child: f, ownsChild: true}, nil
}
