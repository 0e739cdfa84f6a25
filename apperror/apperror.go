// Package apperror classifies errors surfaced to RPC consumers into the
// kinds described by the service's error handling design: validation,
// permission, provider, model, tool, and internal.
package apperror

import (
	"errors"
	"strings"
)

// Kind is the classification of an error as seen by a caller across the RPC
// boundary.
type Kind string

const (
	KindValidation Kind = "validation"
	KindPermission Kind = "permission"
	KindProvider   Kind = "provider"
	KindModel      Kind = "model"
	KindTool       Kind = "tool"
	KindInternal   Kind = "internal"
)

// Sentinel errors matched with errors.Is by callers that need to react to a
// specific failure mode rather than just its classification.
var (
	ErrOutsideRoot    = errors.New("path is outside the project root")
	ErrSensitivePath  = errors.New("sensitive path")
	ErrMaxIterations  = errors.New("max iterations reached")
	ErrToolNotFound   = errors.New("tool not found")
	ErrSecretNotFound = errors.New("secret not found")
)

// Classify inspects an error's message and returns the Kind a consumer
// should treat it as. It mirrors the substring rules from the service's
// error handling design; order matters because some substrings could
// plausibly match more than one kind.
func Classify(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if errors.Is(err, ErrOutsideRoot) || errors.Is(err, ErrSensitivePath) {
		return KindPermission
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "permission") || strings.Contains(msg, "access denied") || strings.Contains(msg, "sensitive path"):
		return KindPermission
	case strings.Contains(msg, "api error") || strings.Contains(msg, "invalid status code") || strings.Contains(msg, "connection") || strings.Contains(msg, "timeout"):
		return KindProvider
	case strings.Contains(msg, "tool") || strings.Contains(msg, "old_text") || strings.Contains(msg, "edits") || strings.Contains(msg, "line"):
		return KindTool
	case strings.Contains(msg, "required") || strings.Contains(msg, "invalid") || strings.Contains(msg, "missing"):
		return KindValidation
	case strings.Contains(msg, "stream error") || strings.Contains(msg, "parse"):
		return KindModel
	default:
		return KindInternal
	}
}
