package aliases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPlainAlias(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.py", `
from typing import TypeAlias, Union

UserRef: TypeAlias = Union[UserModel, int]
NotAnAlias = 4
`)
	r := NewRegistry(dir)
	defer r.Close()

	m, err := r.Load(path)
	require.NoError(t, err)
	require.Contains(t, m, "UserRef")
	assert.Equal(t, "Union[UserModel, int]", m["UserRef"].TypeText)
	assert.NotContains(t, m, "NotAnAlias")
}

func TestLoadFactoryAlias(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.py", `
RoleRef: TypeAlias = component_alias(
    Union[RoleModel, AdminModel],
    component="RoleRef",
    description="A role reference",
    default="admin",
    managed=True,
    any_of=True,
    extensions={"x-internal": True},
)
`)
	r := NewRegistry(dir)
	defer r.Close()

	m, err := r.Load(path)
	require.NoError(t, err)
	rec := m["RoleRef"]
	require.NotNil(t, rec)
	assert.Equal(t, "Union[RoleModel, AdminModel]", rec.TypeText)
	assert.Equal(t, "RoleRef", rec.ComponentName)
	assert.Equal(t, "A role reference", rec.Description)
	assert.Equal(t, "admin", rec.Default)
	assert.True(t, rec.Managed)
	assert.True(t, rec.AnyOf)
	assert.Equal(t, map[string]any{"x-internal": true}, rec.Extensions)

	assert.Contains(t, r.Metadata(), "RoleRef")
}

func TestLoadCastIndirection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.py", `
Base: TypeAlias = Union[UserModel, None]
Derived: TypeAlias = component_alias(cast(type, Base), component="Derived")
`)
	r := NewRegistry(dir)
	defer r.Close()

	m, err := r.Load(path)
	require.NoError(t, err)
	require.Contains(t, m, "Derived")
	assert.Equal(t, "Union[UserModel, None]", m["Derived"].TypeText)
	assert.Equal(t, "Derived", m["Derived"].ComponentName)
}

func TestLoadCaching(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.py", "A: TypeAlias = Union[X, int]\n")

	r := NewRegistry(dir)
	defer r.Close()

	first, err := r.Load(path)
	require.NoError(t, err)

	// Change the file on disk; the cached map must be returned untouched.
	require.NoError(t, os.WriteFile(path, []byte("B: TypeAlias = int\n"), 0o644))
	second, err := r.Load(path)
	require.NoError(t, err)
	assert.Contains(t, second, "A")
	assert.NotContains(t, second, "B")
	assert.Equal(t, first, second)
}

func TestCrossFileImportAbsolute(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common/types.py", "Shared: TypeAlias = Union[SharedModel, int]\n")
	path := writeFile(t, dir, "models/user.py", `
from common.types import Shared

Local: TypeAlias = Union[Shared, str]
`)
	r := NewRegistry(dir)
	defer r.Close()

	m, err := r.Load(path)
	require.NoError(t, err)
	require.Contains(t, m, "Shared")
	assert.Equal(t, "Union[SharedModel, int]", m["Shared"].TypeText)
}

func TestCrossFileImportRelative(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/shared.py", "Thing: TypeAlias = Union[ThingModel, None]\n")
	path := writeFile(t, dir, "pkg/sub/user.py", "from ..shared import Thing\n")

	r := NewRegistry(dir)
	defer r.Close()

	m, err := r.Load(path)
	require.NoError(t, err)
	require.Contains(t, m, "Thing")
	assert.Equal(t, "Union[ThingModel, None]", m["Thing"].TypeText)
}

func TestLocalAliasWinsOverImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common.py", "Ref: TypeAlias = Union[RemoteModel, int]\n")
	path := writeFile(t, dir, "user.py", `
from common import Ref

Ref: TypeAlias = Union[LocalModel, int]
`)
	r := NewRegistry(dir)
	defer r.Close()

	m, err := r.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Union[LocalModel, int]", m["Ref"].TypeText)
}

func TestImportCycleTerminates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "from b import B\nA: TypeAlias = Union[AModel, int]\n")
	path := writeFile(t, dir, "b.py", "from a import A\nB: TypeAlias = Union[BModel, int]\n")

	r := NewRegistry(dir)
	defer r.Close()

	m, err := r.Load(path)
	require.NoError(t, err)
	assert.Contains(t, m, "B")
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.py", `
Inner: TypeAlias = Union[InnerModel, int]
Outer: TypeAlias = Union[Inner, str]
`)
	r := NewRegistry(dir)
	defer r.Close()
	_, err := r.Load(path)
	require.NoError(t, err)

	expanded := r.Expand("Optional[Outer]")
	assert.Contains(t, expanded, "InnerModel")
	assert.NotContains(t, expanded, "Outer")

	// Fixed point: expanding an already-expanded text is identity.
	assert.Equal(t, expanded, r.Expand(expanded))

	// Whole-word matching: OuterMost is not the Outer alias.
	assert.Equal(t, "OuterMost", r.Expand("OuterMost"))
}

func TestExpandNoAliases(t *testing.T) {
	r := NewRegistry(t.TempDir())
	defer r.Close()
	assert.Equal(t, "Optional[X]", r.Expand("Optional[X]"))
}
