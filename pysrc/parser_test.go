package pysrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerSource = `"""Pets handler module."""
from typing import Optional

VERSION = "v1"


class PetsHandler:
    """Handler for pet routes."""

    @route("/pets", method=["GET", "POST"])
    async def pets(self, request):
        """List or create pets.

        >>>openapi
        get:
          summary: List pets
        post:
          summary: Create a pet
        <<<openapi
        """
        return None

    @staticmethod
    def helper():
        return 1
`

func parseSource(t *testing.T, source string) *File {
	t.Helper()
	p := NewParser()
	t.Cleanup(p.Close)
	f, err := p.Parse("test.py", []byte(source))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestParseSyntaxError(t *testing.T) {
	p := NewParser()
	defer p.Close()
	_, err := p.Parse("bad.py", []byte("def broken(:\n"))
	assert.Error(t, err)
}

func TestModuleDocstring(t *testing.T) {
	f := parseSource(t, handlerSource)
	assert.Equal(t, "Pets handler module.", f.ModuleDocstring())
}

func TestClassesAndMethods(t *testing.T) {
	f := parseSource(t, handlerSource)
	classes := f.Classes()
	require.Len(t, classes, 1)

	cls := classes[0]
	assert.Equal(t, "PetsHandler", cls.Name)
	assert.Equal(t, "Handler for pet routes.", cls.Docstring)

	methods := cls.Methods()
	require.Len(t, methods, 2)

	pets := methods[0]
	assert.Equal(t, "pets", pets.Name)
	assert.True(t, pets.Async)
	require.Len(t, pets.Decorators, 1)

	dec := pets.Decorators[0]
	assert.Equal(t, "route", dec.Name)
	require.Len(t, dec.Args, 1)
	path, ok := f.StringValue(dec.Args[0])
	require.True(t, ok)
	assert.Equal(t, "/pets", path)

	methodsArg, ok := f.StringListValue(dec.Kwargs["method"])
	require.True(t, ok)
	assert.Equal(t, []string{"GET", "POST"}, methodsArg)

	helper := methods[1]
	assert.Equal(t, "helper", helper.Name)
	assert.False(t, helper.Async)
	require.Len(t, helper.Decorators, 1)
	assert.Equal(t, "staticmethod", helper.Decorators[0].Name)
}

func TestDottedDecoratorBaseName(t *testing.T) {
	f := parseSource(t, `
class H:
    @routes.pattern_route("/x")
    def x(self):
        pass
`)
	dec := f.Classes()[0].Methods()[0].Decorators[0]
	assert.Equal(t, "routes.pattern_route", dec.Name)
	assert.Equal(t, "pattern_route", dec.BaseName())
}

func TestTopLevelAssignments(t *testing.T) {
	f := parseSource(t, `
T = TypeVar("T")
UserRef: TypeAlias = Union[UserModel, int]
plain = 4
`)
	assigns := f.TopLevelAssignments()
	require.Len(t, assigns, 3)

	assert.Equal(t, "T", assigns[0].Target)
	assert.Empty(t, assigns[0].Annotation)
	assert.Equal(t, `TypeVar("T")`, f.Text(assigns[0].Value))

	assert.Equal(t, "UserRef", assigns[1].Target)
	assert.Equal(t, "TypeAlias", assigns[1].Annotation)
	assert.Equal(t, "Union[UserModel, int]", f.Text(assigns[1].Value))

	assert.Equal(t, "plain", assigns[2].Target)
}

func TestFromImports(t *testing.T) {
	f := parseSource(t, `
from models.common import UserRef, RoleRef
from ..shared import Thing as Alias
import os
`)
	imports := f.FromImports()
	require.Len(t, imports, 2)
	assert.Equal(t, "models.common", imports[0].Module)
	assert.Equal(t, []string{"UserRef", "RoleRef"}, imports[0].Names)
	assert.Equal(t, "..shared", imports[1].Module)
}

func TestClassBases(t *testing.T) {
	f := parseSource(t, `
class Admin(UserModel, Generic[T], base.Mixin):
    pass
`)
	cls := f.Classes()[0]
	assert.Equal(t, []string{"UserModel", "Generic[T]", "base.Mixin"}, cls.Bases)
}

func TestResolveFString(t *testing.T) {
	f := parseSource(t, `
class H:
    @route(f"/api/{VERSION}/pets")
    def pets(self):
        pass
`)
	dec := f.Classes()[0].Methods()[0].Decorators[0]
	require.Len(t, dec.Args, 1)

	resolved, ok := f.ResolveFString(dec.Args[0], func(expr string) (string, bool) {
		if expr == "VERSION" {
			return "v1", true
		}
		return "", false
	})
	require.True(t, ok)
	assert.Equal(t, "/api/v1/pets", resolved)

	_, ok = f.ResolveFString(dec.Args[0], func(string) (string, bool) { return "", false })
	assert.False(t, ok)
}

func TestResolveFStringBraceEscapes(t *testing.T) {
	f := parseSource(t, `
class H:
    @route(f"/api/{VERSION}/pets/{{pet_id}}")
    def pet(self):
        pass
`)
	dec := f.Classes()[0].Methods()[0].Decorators[0]
	require.Len(t, dec.Args, 1)

	// Doubled braces are the literal-brace escape; they must collapse so
	// the template segment survives as {pet_id}.
	resolved, ok := f.ResolveFString(dec.Args[0], func(expr string) (string, bool) {
		return "v1", expr == "VERSION"
	})
	require.True(t, ok)
	assert.Equal(t, "/api/v1/pets/{pet_id}", resolved)
}

func TestLiteralValue(t *testing.T) {
	f := parseSource(t, `
config = {"name": "pets", "count": 3, "ratio": 0.5, "on": True, "off": False, "nothing": None, "tags": ["a", "b"]}
`)
	value := f.LiteralValue(f.TopLevelAssignments()[0].Value)
	dict, ok := value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pets", dict["name"])
	assert.Equal(t, 3, dict["count"])
	assert.Equal(t, 0.5, dict["ratio"])
	assert.Equal(t, true, dict["on"])
	assert.Equal(t, false, dict["off"])
	assert.Nil(t, dict["nothing"])
	assert.Equal(t, []any{"a", "b"}, dict["tags"])
}

func TestUnquote(t *testing.T) {
	cases := map[string]string{
		`"plain"`:       "plain",
		`'single'`:      "single",
		`"""triple"""`:  "triple",
		`f"/pets/{id}"`: "/pets/{id}",
		`r'\d+'`:        `\d+`,
		"unquoted":      "unquoted",
	}
	for in, want := range cases {
		assert.Equal(t, want, Unquote(in), "input: %s", in)
	}
}
