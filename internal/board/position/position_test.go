package position

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id  string
	pos int
}

func (i *item) GetID() string          { return i.id }
func (i *item) GetPosition() int       { return i.pos }
func (i *item) SetPosition(p int)      { i.pos = p }
func ids(items []*item) (out []string) { return collect(items, func(i *item) string { return i.id }) }

func collect[T any](items []*item, f func(*item) T) []T {
	out := make([]T, 0, len(items))
	for _, i := range items {
		out = append(out, f(i))
	}
	return out
}

func positions(items []*item) []int {
	return collect(items, func(i *item) int { return i.pos })
}

func seq(n int) []*item {
	items := make([]*item, n)
	for i := range items {
		items[i] = &item{id: fmt.Sprintf("L%d", i+1), pos: i}
	}
	return items
}

func TestNext(t *testing.T) {
	assert.Equal(t, 0, Next([]*item{}))
	assert.Equal(t, 3, Next(seq(3)))
	assert.Equal(t, 8, Next([]*item{{id: "a", pos: 7}, {id: "b", pos: 2}}))
}

func TestCloseGap_DeleteFirstOfThree(t *testing.T) {
	items := seq(3)
	remaining := items[1:]

	changed := CloseGap(remaining, 0)

	require.Len(t, changed, 2)
	assert.Equal(t, []string{"L2", "L3"}, ids(changed))
	assert.Equal(t, []int{0, 1}, positions(remaining))
}

func TestCloseGap_DeleteLastChangesNothing(t *testing.T) {
	items := seq(3)
	changed := CloseGap(items[:2], 2)
	assert.Empty(t, changed)
	assert.Equal(t, []int{0, 1}, positions(items[:2]))
}

func TestMove_ForwardToEnd(t *testing.T) {
	items := seq(3)

	result, changed, err := Move(items, "L1", 2)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"L2", "L3", "L1"}, ids(result))
	assert.Equal(t, []int{0, 1, 2}, positions(result))
}

func TestMove_Backward(t *testing.T) {
	items := seq(4)

	result, changed, err := Move(items, "L4", 1)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"L1", "L4", "L2", "L3"}, ids(result))
	assert.Equal(t, []int{0, 1, 2, 3}, positions(result))
}

func TestMove_SamePositionIsNoop(t *testing.T) {
	items := seq(3)

	result, changed, err := Move(items, "L2", 1)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, ids(items), ids(result))
}

func TestMove_Errors(t *testing.T) {
	items := seq(3)

	_, _, err := Move(items, "L1", 3)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, _, err = Move(items, "L1", -1)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, _, err = Move(items, "missing", 0)
	assert.ErrorIs(t, err, ErrNotInSequence)
	assert.Equal(t, []int{0, 1, 2}, positions(items))
}

func TestInsertAt(t *testing.T) {
	items := seq(2)
	incoming := &item{id: "X", pos: 9}

	result, err := InsertAt(items, incoming, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2", "X"}, ids(result))
	assert.Equal(t, []int{0, 1, 2}, positions(result))

	result, err = InsertAt(seq(2), &item{id: "Y"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "L1", "L2"}, ids(result))

	_, err = InsertAt(seq(2), &item{id: "Z"}, 3)
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestDensityHoldsUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var items []*item
	next := 0

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(items) == 0:
			next++
			items = append(items, &item{id: fmt.Sprintf("n%d", next), pos: Next(items)})
		case op == 1:
			idx := rng.Intn(len(items))
			removed := items[idx]
			items = append(items[:idx:idx], items[idx+1:]...)
			CloseGap(items, removed.pos)
		default:
			target := items[rng.Intn(len(items))]
			result, _, err := Move(items, target.id, rng.Intn(len(items)))
			require.NoError(t, err)
			items = result
		}
		require.True(t, IsDense(items), "step %d", step)
	}
}

func TestIsDense(t *testing.T) {
	assert.True(t, IsDense([]*item{}))
	assert.True(t, IsDense([]*item{{pos: 1}, {pos: 0}}))
	assert.False(t, IsDense([]*item{{pos: 0}, {pos: 2}}))
	assert.False(t, IsDense([]*item{{pos: 0}, {pos: 0}}))
}
