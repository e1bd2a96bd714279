package typeinfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swagsync/swagsync/spec"
)

func TestResolvePrimitives(t *testing.T) {
	cases := []struct {
		annotation string
		wantType   string
	}{
		{"str", "string"},
		{"int", "integer"},
		{"bool", "boolean"},
		{"float", "number"},
		{"dict", "object"},
		{"Dict[str, int]", "object"},
		{"Mapping[str, str]", "object"},
		{"bytes", "string"},
		{"", "string"},
		{"datetime.datetime", "string"},
	}
	for _, tc := range cases {
		t.Run(tc.annotation, func(t *testing.T) {
			s := Resolve(tc.annotation)
			assert.Equal(t, tc.wantType, s.Type)
			assert.False(t, s.Nullable)
		})
	}
}

func TestResolveArrays(t *testing.T) {
	s := Resolve("List[str]")
	require.Equal(t, "array", s.Type)
	require.NotNil(t, s.Items)
	assert.Equal(t, "string", s.Items.Type)

	s = Resolve("List[UserModel]")
	require.Equal(t, "array", s.Type)
	assert.Equal(t, spec.RefPrefix+"UserModel", s.Items.Ref)

	s = Resolve("List[Dict[str, str]]")
	require.Equal(t, "array", s.Type)
	assert.Equal(t, "object", s.Items.Type)

	s = Resolve("list")
	assert.Equal(t, "array", s.Type)
}

func TestResolveModelReference(t *testing.T) {
	s := Resolve("UserModel")
	assert.Equal(t, spec.RefPrefix+"UserModel", s.Ref)
	assert.Empty(t, s.Type)
}

func TestResolveLiteralEnum(t *testing.T) {
	s := Resolve(`Literal["b", "a", "a", "x.y", "bad value!", 'c']`)
	assert.Equal(t, "string", s.Type)
	// Sorted, deduplicated, invalid tokens dropped.
	assert.Equal(t, []string{"a", "b", "c", "x.y"}, s.Enum)
}

func TestResolveLiteralTakesPrecedence(t *testing.T) {
	// Optional/union logic never reshapes a literal result.
	s := Resolve(`Optional[Literal["a", "b"]]`)
	assert.Equal(t, "string", s.Type)
	assert.Equal(t, []string{"a", "b"}, s.Enum)
	assert.Nil(t, s.OneOf)
	assert.False(t, s.Nullable)
}

func TestUnwrapOptionalSpellings(t *testing.T) {
	cases := []struct {
		in       string
		want     string
		nullable bool
	}{
		{"Optional[X]", "X", true},
		{"Union[X, None]", "X", true},
		{"Union[None, X]", "X", true},
		{"X | None", "X", true},
		{"None | X", "X", true},
		{"Union[X, Y, None]", "Union[X, Y]", true},
		{"X | Y | None", "X | Y", true},
		{"X", "X", false},
		{"Union[X, Y]", "Union[X, Y]", false},
		{"List[X]", "List[X]", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, nullable := UnwrapOptional(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.nullable, nullable)
		})
	}
}

func TestFlattenUnions(t *testing.T) {
	assert.Equal(t, "Union[A, B, C]", FlattenUnions("Union[Union[A, B], C]"))
	assert.Equal(t, "Union[A, B, C, D]", FlattenUnions("Union[Union[A, Union[B, C]], D]"))
	assert.Equal(t, "A | B | C", FlattenUnions("(A | B) | C"))

	// Idempotent: flattening an already-flat union returns it unchanged,
	// and flattening twice equals flattening once.
	flat := FlattenUnions("Union[Union[A, B], C]")
	assert.Equal(t, flat, FlattenUnions(flat))
	assert.Equal(t, "Union[A, B]", FlattenUnions("Union[A, B]"))
	assert.Equal(t, "A | B", FlattenUnions("A | B"))
}

func TestFlattenPathologicalInputTerminates(t *testing.T) {
	// Unbalanced brackets must not loop forever.
	in := "Union[Union[A, Union[B"
	assert.NotPanics(t, func() { FlattenUnions(in) })
}

func TestResolveUnionOfModels(t *testing.T) {
	s := Resolve("Union[RoleModel, UserModel]")
	require.Len(t, s.OneOf, 2)
	assert.Equal(t, spec.RefPrefix+"RoleModel", s.OneOf[0].Ref)
	assert.Equal(t, spec.RefPrefix+"UserModel", s.OneOf[1].Ref)
	assert.False(t, s.Nullable)
}

func TestResolveOptionalUnionOfModels(t *testing.T) {
	s := Resolve("Optional[Union[RoleModel, UserModel]]")
	require.Len(t, s.OneOf, 2)
	assert.Equal(t, spec.RefPrefix+"RoleModel", s.OneOf[0].Ref)
	assert.Equal(t, spec.RefPrefix+"UserModel", s.OneOf[1].Ref)
	assert.True(t, s.Nullable)
}

func TestResolvePipeUnion(t *testing.T) {
	s := Resolve("RoleModel | UserModel | None")
	require.Len(t, s.OneOf, 2)
	assert.True(t, s.Nullable)
}

func TestResolveParenthesizedUnion(t *testing.T) {
	// Alias expansion parenthesizes substituted text.
	s := Resolve("Optional[(Union[RoleModel, UserModel])]")
	require.Len(t, s.OneOf, 2)
	assert.True(t, s.Nullable)
}

func TestResolveUnionAnyOf(t *testing.T) {
	s := ResolveWithOptions("Union[RoleModel, UserModel]", Options{AnyOf: true})
	assert.Nil(t, s.OneOf)
	require.Len(t, s.AnyOf, 2)
}

func TestResolveUnionWithoutModelsFallsThrough(t *testing.T) {
	s := Resolve("Union[int, str]")
	assert.Nil(t, s.OneOf)
	assert.Equal(t, "integer", s.Type)
}

func TestResolveNestedGenericSplit(t *testing.T) {
	// The comma inside Dict[...] must not split the union.
	s := Resolve("Union[Dict[str, int], UserModel]")
	require.Len(t, s.OneOf, 1)
	assert.Equal(t, spec.RefPrefix+"UserModel", s.OneOf[0].Ref)
}

func TestResolveOptionalModelRefHasNoNullable(t *testing.T) {
	// nullable is disallowed alongside $ref; a bare ref stays bare.
	s := Resolve("Optional[UserModel]")
	assert.Equal(t, spec.RefPrefix+"UserModel", s.Ref)
	assert.False(t, s.Nullable)
}

func TestResolveOptionalScalarNullable(t *testing.T) {
	s := Resolve("Optional[int]")
	assert.Equal(t, "integer", s.Type)
	assert.True(t, s.Nullable)
}

func TestResolveMalformedDegradesToString(t *testing.T) {
	for _, in := range []string{"Union[", "][", "Optional[", "Literal", "@@@@"} {
		s := Resolve(in)
		require.NotNil(t, s, in)
	}
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t, []string{"A", " B"}, SplitTopLevel("A, B"))
	assert.Equal(t, []string{"Dict[str, int]", " B"}, SplitTopLevel("Dict[str, int], B"))
	assert.Equal(t, []string{"A"}, SplitTopLevel("A"))
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "UserModel", ModelName("models.UserModel"))
	assert.Equal(t, "UserModel", ModelName("List[UserModel]"))
	assert.Equal(t, "", ModelName("List[str]"))
	assert.Equal(t, "", ModelName("int"))
}
