package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaccomoc/jactl-sub011/lang/types"
)

func TestWideningLadder(t *testing.T) {
	assert.True(t, types.CanWiden(types.INT, types.LONG))
	assert.True(t, types.CanWiden(types.LONG, types.DOUBLE))
	assert.True(t, types.CanWiden(types.DOUBLE, types.DECIMAL))
	assert.True(t, types.CanWiden(types.INT, types.DECIMAL))
	assert.False(t, types.CanWiden(types.DOUBLE, types.INT))
	assert.True(t, types.CanWiden(types.STRING, types.ANY))
}

func TestWiden(t *testing.T) {
	assert.Equal(t, types.LONG, types.Widen(types.INT, types.LONG))
	assert.Equal(t, types.DECIMAL, types.Widen(types.DOUBLE, types.DECIMAL))
}

func TestCanCastStructural(t *testing.T) {
	m := types.MapOf(types.Any)
	inst := types.InstanceOf("Point")
	assert.True(t, types.CanCast(m, inst))
	assert.True(t, types.CanCast(inst, m))
	assert.True(t, types.CanCast(types.Str, types.Int))
	assert.False(t, types.CanCast(types.Bool, types.Int))
}

func TestListOfTypeName(t *testing.T) {
	lt := types.ListOf(types.Int)
	assert.Equal(t, "List<int>", lt.TypeName())
	assert.Equal(t, "List", types.ListOf(nil).TypeName())
}

func TestEqual(t *testing.T) {
	assert.True(t, types.Equal(types.ListOf(types.Int), types.ListOf(types.Int)))
	assert.False(t, types.Equal(types.ListOf(types.Int), types.ListOf(types.Str)))
	assert.True(t, types.Equal(types.InstanceOf("Foo"), types.InstanceOf("Foo")))
}

func TestLookupBuiltin(t *testing.T) {
	ty, ok := types.Lookup("int")
	assert.True(t, ok)
	assert.Equal(t, types.INT, ty.Kind)

	_, ok = types.Lookup("MyClass")
	assert.False(t, ok)
}
