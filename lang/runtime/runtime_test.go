package runtime_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaccomoc/jactl-sub011/lang/runtime"
)

func TestListIndexingAndGrowOnSet(t *testing.T) {
	l := runtime.NewList([]runtime.Value{runtime.Int(1), runtime.Int(2)})
	v, err := l.Index(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.Int(1), v)

	v, err = l.Index(-1)
	require.NoError(t, err)
	assert.Equal(t, runtime.Int(2), v)

	require.NoError(t, l.SetIndex(4, runtime.Int(9)))
	assert.Equal(t, 5, l.Len())
	v, err = l.Index(4)
	require.NoError(t, err)
	assert.Equal(t, runtime.Int(9), v)
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := runtime.NewMap(4)
	require.NoError(t, m.Set(runtime.Str("b"), runtime.Int(2)))
	require.NoError(t, m.Set(runtime.Str("a"), runtime.Int(1)))
	require.NoError(t, m.Set(runtime.Str("b"), runtime.Int(20)))

	assert.Equal(t, []string{"b", "a"}, m.FieldNames())
	v, found, err := m.Get(runtime.Str("b"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, runtime.Int(20), v)
}

func TestMapDeleteLeavesTombstone(t *testing.T) {
	m := runtime.NewMap(2)
	require.NoError(t, m.Set(runtime.Str("x"), runtime.Int(1)))
	m.Delete("x")
	_, found, err := m.Get(runtime.Str("x"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, m.Len())
}

func TestInstanceFieldsBackedByMap(t *testing.T) {
	inst := runtime.NewInstance("Point", 2)
	require.NoError(t, inst.SetField("x", runtime.Int(1)))
	require.NoError(t, inst.SetField("y", runtime.Int(2)))
	v, err := inst.Field("x")
	require.NoError(t, err)
	assert.Equal(t, runtime.Int(1), v)

	_, err = inst.Field("z")
	assert.Error(t, err)
}

func TestCellSharesMutation(t *testing.T) {
	c := runtime.NewCell(runtime.Int(1))
	ref := c
	ref.V = runtime.Int(2)
	assert.Equal(t, runtime.Int(2), c.V)
}

func TestLimitAndSkipStages(t *testing.T) {
	l := runtime.NewList([]runtime.Value{runtime.Int(1), runtime.Int(2), runtime.Int(3), runtime.Int(4)})
	it := runtime.SkipStage(l.Iterate(), 1)
	it = runtime.LimitStage(it, 2)
	out, err := runtime.Drain(it)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	v0, _ := out.Index(0)
	v1, _ := out.Index(1)
	assert.Equal(t, runtime.Int(2), v0)
	assert.Equal(t, runtime.Int(3), v1)
}

func TestReverseStage(t *testing.T) {
	l := runtime.NewList([]runtime.Value{runtime.Int(1), runtime.Int(2), runtime.Int(3)})
	out, err := runtime.Drain(runtime.ReverseStage(l.Iterate()))
	require.NoError(t, err)
	v0, _ := out.Index(0)
	v2, _ := out.Index(2)
	assert.Equal(t, runtime.Int(3), v0)
	assert.Equal(t, runtime.Int(1), v2)
}

func TestUniqueStage(t *testing.T) {
	l := runtime.NewList([]runtime.Value{runtime.Int(1), runtime.Int(1), runtime.Int(2)})
	out, err := runtime.Drain(runtime.UniqueStage(l.Iterate()))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestGroupedStage(t *testing.T) {
	l := runtime.NewList([]runtime.Value{runtime.Int(1), runtime.Int(2), runtime.Int(3), runtime.Int(4), runtime.Int(5)})
	out, err := runtime.Drain(runtime.GroupedStage(l.Iterate(), 2))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	last, _ := out.Index(2)
	assert.Equal(t, 1, last.(*runtime.List).Len())
}

func TestRegexMatchStateGlobalIteration(t *testing.T) {
	re := regexp.MustCompile(`\d+`)
	st := runtime.NewRegexMatchState(re, "a1 b22 c333")

	var found []string
	for st.Match(true) {
		found = append(found, st.Group(0))
	}
	assert.Equal(t, []string{"1", "22", "333"}, found)
}

func TestRegexMatchStateNonGlobalAlwaysRestarts(t *testing.T) {
	re := regexp.MustCompile(`\d+`)
	st := runtime.NewRegexMatchState(re, "a1 b22")
	assert.True(t, st.Match(false))
	assert.Equal(t, "1", st.Group(0))
	assert.True(t, st.Match(false))
	assert.Equal(t, "1", st.Group(0))
}

func TestNumericCmpWidensAcrossKinds(t *testing.T) {
	c, err := runtime.Int(1).Cmp(runtime.Long(1))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = runtime.Double(1.5).Cmp(runtime.Int(1))
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}
