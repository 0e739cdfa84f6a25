package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlvinPlayz23/void-core/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAndValidate_RelativeWithinRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	resolved, err := ResolveAndValidate(root, "a.txt")
	require.NoError(t, err)

	canonicalRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resolved, canonicalRoot))
}

func TestResolveAndValidate_RelativeNonExistentWithinRoot(t *testing.T) {
	root := t.TempDir()

	resolved, err := ResolveAndValidate(root, "new.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "new.txt"), resolved)
}

func TestResolveAndValidate_ParentTraversalRejected(t *testing.T) {
	root := t.TempDir()

	_, err := ResolveAndValidate(root, "../escape.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrOutsideRoot)
}

func TestResolveAndValidate_NestedTraversalRejected(t *testing.T) {
	root := t.TempDir()

	_, err := ResolveAndValidate(root, "sub/../../escape.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrOutsideRoot)
}

func TestResolveAndValidate_BareParentRejected(t *testing.T) {
	root := t.TempDir()

	_, err := ResolveAndValidate(root, "..")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrOutsideRoot)
}

func TestIsSensitivePath(t *testing.T) {
	cases := map[string]bool{
		".env":               true,
		".env.local":         true,
		"tauri.conf.json":    true,
		"id_rsa":             true,
		"id_ed25519":         true,
		"ID_RSA":             true,
		"src/.git/config":    true,
		"a/.ssh/known_hosts": true,
		"main.go":            false,
		"envelope.txt":       false,
	}
	for path, want := range cases {
		assert.Equal(t, want, IsSensitivePath(path, SensitivePathPolicy{}), "path %q", path)
	}
}

func TestCheckSensitive_AllowOverride(t *testing.T) {
	require.Error(t, CheckSensitive(".env", false, SensitivePathPolicy{}))
	require.NoError(t, CheckSensitive(".env", true, SensitivePathPolicy{}))
	require.NoError(t, CheckSensitive("main.go", false, SensitivePathPolicy{}))
}

func TestIsSensitivePath_ExtraDenyPatterns(t *testing.T) {
	policy := SensitivePathPolicy{ExtraDenyPatterns: []string{"secrets.yaml"}}
	assert.True(t, IsSensitivePath("config/secrets.yaml", policy))
	assert.False(t, IsSensitivePath("config/secrets.yaml", SensitivePathPolicy{}))
}

func TestIsSensitivePath_AllowPathsOverridesDenyList(t *testing.T) {
	policy := SensitivePathPolicy{AllowPaths: []string{"config/secrets.example.env"}}
	assert.False(t, IsSensitivePath("config/secrets.example.env", policy))
	// Unrelated .env files stay denied.
	assert.True(t, IsSensitivePath(".env", policy))
}

