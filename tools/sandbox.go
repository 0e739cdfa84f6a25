package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlvinPlayz23/void-core/apperror"
)

// sensitiveFileNames are matched against a path's base name, case-insensitively.
// ".env.*" is matched as a prefix rather than exact equality.
var sensitiveFileNames = []string{".env", "tauri.conf.json", "id_rsa", "id_ed25519"}

// sensitivePathComponents are matched against any path component, case-insensitively.
var sensitivePathComponents = []string{".git", ".ssh", ".gnupg"}

// ResolveAndValidate confines target to root: relative targets are rejected
// if any component attempts parent-dir or root traversal; the joined path is
// then checked to actually resolve (by existence-based canonicalisation, or
// by prefix when the path does not yet exist) within the canonical root.
func ResolveAndValidate(root, target string) (string, error) {
	canonicalRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("validation: failed to canonicalize root %q: %w", root, err)
	}
	canonicalRoot, err = filepath.Abs(canonicalRoot)
	if err != nil {
		return "", fmt.Errorf("validation: failed to canonicalize root %q: %w", root, err)
	}

	var candidate string
	if filepath.IsAbs(target) {
		candidate = filepath.Clean(target)
	} else {
		if hasTraversal(target) {
			return "", fmt.Errorf("%w: %s", apperror.ErrOutsideRoot, target)
		}
		candidate = filepath.Join(canonicalRoot, target)
	}

	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		resolved, err = filepath.Abs(resolved)
		if err != nil {
			return "", fmt.Errorf("validation: failed to canonicalize %q: %w", target, err)
		}
		if !isWithinRoot(canonicalRoot, resolved) {
			return "", fmt.Errorf("%w: %s", apperror.ErrOutsideRoot, target)
		}
		return resolved, nil
	}

	if !isWithinRoot(canonicalRoot, candidate) {
		return "", fmt.Errorf("%w: %s", apperror.ErrOutsideRoot, target)
	}
	return candidate, nil
}

func hasTraversal(target string) bool {
	cleaned := filepath.Clean(target)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(cleaned), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

func isWithinRoot(canonicalRoot, candidate string) bool {
	if candidate == canonicalRoot {
		return true
	}
	return strings.HasPrefix(candidate, canonicalRoot+string(filepath.Separator))
}

// SensitivePathPolicy extends the built-in deny list with project/config
// driven additions: ExtraDenyPatterns adds names or path components to
// treat as sensitive (config.Config.ExtraSensitivePaths), and AllowPaths
// pre-approves specific project-relative paths that would otherwise match
// the deny list (config.StarterProjectConfig.AllowSensitive). The zero
// value is the built-in deny list with no exceptions.
type SensitivePathPolicy struct {
	ExtraDenyPatterns []string
	AllowPaths        []string
}

func (p SensitivePathPolicy) isAllowed(path string) bool {
	slashPath := filepath.ToSlash(path)
	for _, allowed := range p.AllowPaths {
		allowed = filepath.ToSlash(strings.TrimPrefix(allowed, "/"))
		if allowed == "" {
			continue
		}
		if slashPath == allowed || strings.HasSuffix(slashPath, "/"+allowed) {
			return true
		}
	}
	return false
}

func (p SensitivePathPolicy) matchesExtra(base string, parts []string) bool {
	for _, pattern := range p.ExtraDenyPatterns {
		lower := strings.ToLower(pattern)
		if base == lower {
			return true
		}
		for _, part := range parts {
			if strings.ToLower(part) == lower {
				return true
			}
		}
	}
	return false
}

// IsSensitivePath reports whether path's base name or any path component
// matches the sensitive-path deny list (built-in plus policy additions),
// case-insensitively, unless policy pre-approves it.
func IsSensitivePath(path string, policy SensitivePathPolicy) bool {
	if policy.isAllowed(path) {
		return false
	}

	base := strings.ToLower(filepath.Base(path))
	for _, name := range sensitiveFileNames {
		if base == name {
			return true
		}
	}
	if strings.HasPrefix(base, ".env.") {
		return true
	}

	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, part := range parts {
		lower := strings.ToLower(part)
		for _, comp := range sensitivePathComponents {
			if lower == comp {
				return true
			}
		}
	}

	return policy.matchesExtra(base, parts)
}

// CheckSensitive fails with apperror.ErrSensitivePath unless allowSensitive
// is true or the path is not sensitive under policy.
func CheckSensitive(path string, allowSensitive bool, policy SensitivePathPolicy) error {
	if allowSensitive {
		return nil
	}
	if IsSensitivePath(path, policy) {
		return fmt.Errorf("%w: %s", apperror.ErrSensitivePath, path)
	}
	return nil
}

// EnsureParentDir creates path's parent directories if missing.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
