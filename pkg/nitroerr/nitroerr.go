// Package nitroerr implements the error taxonomy shared by every nitrolink
// package: ConfigParse, SectionInvariant, SymbolResolution, DataEmission and
// External. It exists so callers can errors.Is/errors.As against a kind
// without every package defining its own sentinel family.
package nitroerr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/dsdecomp/nitrolink/pkg/utils"
)

// Kind is one of the five error categories a nitrolink operation can fail with.
type Kind int

const (
	ConfigParse Kind = iota
	SectionInvariant
	SymbolResolution
	DataEmission
	External
)

func (k Kind) String() string {
	switch k {
	case ConfigParse:
		return "config parse error"
	case SectionInvariant:
		return "section invariant violation"
	case SymbolResolution:
		return "symbol resolution error"
	case DataEmission:
		return "data emission error"
	case External:
		return "external error"
	default:
		return "unknown error"
	}
}

// ExitCode maps a Kind to the process exit code used by the CLI entry
// point: 1 for input mistakes a user can fix in their config, 2 for
// resolution/emission failures, 3 for everything else.
func (k Kind) ExitCode() int {
	switch k {
	case ConfigParse, SectionInvariant:
		return 1
	case SymbolResolution, DataEmission:
		return 2
	default:
		return 3
	}
}

var kindSentinels = [...]error{
	ConfigParse:      errors.New(ConfigParse.String()),
	SectionInvariant: errors.New(SectionInvariant.String()),
	SymbolResolution: errors.New(SymbolResolution.String()),
	DataEmission:     errors.New(DataEmission.String()),
	External:         errors.New(External.String()),
}

// Context carries the file/line diagnostic location attached to parse
// errors. Line is 0 when no line number applies.
type Context struct {
	File string
	Line int
}

func (c Context) String() string {
	if c.File == "" {
		return ""
	}
	if c.Line <= 0 {
		return c.File
	}
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

// Error wraps an underlying cause with a taxonomy Kind, optional parse
// context, and the call stack captured where the error was created.
// Unwrap exposes both the sentinel Kind value (for errors.Is) and the
// original cause.
type Error struct {
	Kind Kind
	Ctx  Context
	Err  error
	pcs  []uintptr
}

// callers captures the creating call stack, skipping the runtime.Callers
// frame, callers itself, and the New/At constructor it was invoked from.
func callers() []uintptr {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}

func (e *Error) Error() string {
	if ctx := e.Ctx.String(); ctx != "" {
		return fmt.Sprintf("%s: %s: %s", ctx, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{kindSentinels[e.Kind], e.Err}
}

// Backtrace renders the call stack captured when the error was created,
// one frame per line, ready to print under the error message at the CLI
// boundary.
func (e *Error) Backtrace() string {
	if len(e.pcs) == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(e.pcs)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

// New wraps err under kind with no parse context, capturing the call
// stack at the point of creation.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err, pcs: callers()}
}

// Newf is a convenience for New(kind, fmt.Errorf(format, args...)).
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Errorf(format, args...))
}

// At attaches a parse context to the error, so ConfigParse diagnostics
// name the file and line that triggered them.
func At(kind Kind, ctx Context, err error) *Error {
	return &Error{Kind: kind, Ctx: ctx, Err: err, pcs: callers()}
}

// Atf is a convenience for At(kind, ctx, fmt.Errorf(format, args...)).
func Atf(kind Kind, ctx Context, format string, args ...any) *Error {
	return At(kind, ctx, fmt.Errorf(format, args...))
}

// Is reports whether err ultimately belongs to the given Kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, kindSentinels[kind])
}

// Wrap prepends detail to err via pkg/utils.MakeError's %w-wrapping
// before tagging the result with kind —
// the common case of an os/io failure that needs a short explanation of
// what nitrolink was doing when it happened.
func Wrap(kind Kind, err error, detail string, args ...any) *Error {
	return New(kind, utils.MakeError(err, detail, args...))
}
