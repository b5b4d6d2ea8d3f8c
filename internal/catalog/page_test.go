package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestNewPage_Window(t *testing.T) {
	for total := 0; total <= 12; total++ {
		for size := 1; size <= 5; size++ {
			for number := 1; number <= 6; number++ {
				p, err := NewPage(ints(total), size, number)
				require.NoError(t, err)

				want := min(size, max(0, total-(number-1)*size))
				assert.Len(t, p.Items, want, "total=%d size=%d page=%d", total, size, number)
				assert.Equal(t, number*size < total, p.HasNext, "total=%d size=%d page=%d", total, size, number)
				assert.Equal(t, number > 1, p.HasPrevious)
				assert.Equal(t, total, p.TotalCount)
				if want > 0 {
					assert.Equal(t, (number-1)*size, p.Items[0])
				}
			}
		}
	}
}

func TestNewPage_PastTheEnd(t *testing.T) {
	p, err := NewPage(ints(3), 2, 5)
	require.NoError(t, err)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrevious)
}

func TestNewPage_HugeValues(t *testing.T) {
	p, err := NewPage(ints(3), math.MaxInt, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext)

	p, err = NewPage(ints(3), math.MaxInt, 1)
	require.NoError(t, err)
	assert.Len(t, p.Items, 3)
}

func TestNewPage_InvalidArguments(t *testing.T) {
	_, err := NewPage(ints(3), 0, 1)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = NewPage(ints(3), 1, 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = NewPage(ints(3), -1, -1)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestPage_TotalPages(t *testing.T) {
	assert.Equal(t, 0, Page[int]{TotalCount: 0, PageSize: 10}.TotalPages())
	assert.Equal(t, 1, Page[int]{TotalCount: 10, PageSize: 10}.TotalPages())
	assert.Equal(t, 2, Page[int]{TotalCount: 11, PageSize: 10}.TotalPages())
	assert.Equal(t, 0, Page[int]{TotalCount: 11}.TotalPages())
}
