package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRanges_NoBounds(t *testing.T) {
	ranges, err := BuildRanges([]string{"a.pdf", "b.pdf"}, nil)
	require.NoError(t, err)
	require.Len(t, ranges, 2)

	for i, path := range []string{"a.pdf", "b.pdf"} {
		assert.Equal(t, path, ranges[i].Path)
		assert.False(t, ranges[i].IsRanged())
		assert.Nil(t, ranges[i].Pages())
	}
}

func TestBuildRanges_PairsInOrder(t *testing.T) {
	ranges, err := BuildRanges([]string{"a.pdf", "b.pdf"}, []int{0, 2, 3, 5})
	require.NoError(t, err)
	require.Len(t, ranges, 2)

	assert.Equal(t, 0, *ranges[0].Start)
	assert.Equal(t, 2, *ranges[0].End)
	assert.Equal(t, 3, *ranges[1].Start)
	assert.Equal(t, 5, *ranges[1].End)
}

func TestBuildRanges_CountMismatch(t *testing.T) {
	tests := []struct {
		name   string
		bounds []int
	}{
		{"too few", []int{0, 1, 2}},
		{"too many", []int{0, 1, 2, 3, 4}},
		{"empty", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRanges([]string{"a.pdf", "b.pdf"}, tt.bounds)
			assert.ErrorIs(t, err, ErrRangeCount)
		})
	}
}

func TestMergeRange_Pages(t *testing.T) {
	assert.Equal(t, []int{1, 2}, Ranged("a.pdf", 0, 2).Pages())
	assert.Equal(t, []int{4}, Ranged("a.pdf", 3, 4).Pages())
	assert.Nil(t, Ranged("a.pdf", 2, 2).Pages())
	assert.Nil(t, Whole("a.pdf").Pages())
}

func TestMergeRange_String(t *testing.T) {
	assert.Equal(t, "a.pdf", Whole("a.pdf").String())
	assert.Equal(t, "a.pdf[1:3]", Ranged("a.pdf", 1, 3).String())
}

func TestMergeRange_HalfOpenIsWhole(t *testing.T) {
	start := 1
	r := MergeRange{Path: "a.pdf", Start: &start}
	assert.False(t, r.IsRanged())
	assert.NoError(t, ValidateBounds(r))
}
