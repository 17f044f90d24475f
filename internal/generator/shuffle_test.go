package generator

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededRandIsDeterministic(t *testing.T) {
	a := NewSeededRand(42)
	b := NewSeededRand(42)

	itemsA := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	itemsB := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	Shuffle(a, itemsA)
	Shuffle(b, itemsB)

	assert.Equal(t, itemsA, itemsB)
}

func TestShufflePreservesElements(t *testing.T) {
	items := []int64{10, 20, 30, 40, 50, 60, 70}
	original := append([]int64(nil), items...)

	Shuffle(NewSeededRand(7), items)

	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	assert.Equal(t, original, items)
}

func TestShuffleHandlesShortSlices(t *testing.T) {
	empty := []string{}
	Shuffle(NewRand(), empty)
	assert.Empty(t, empty)

	single := []string{"only"}
	Shuffle(NewRand(), single)
	assert.Equal(t, []string{"only"}, single)
}
