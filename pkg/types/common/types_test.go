package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination_ClampsPage(t *testing.T) {
	assert.Equal(t, 1, NewPagination(0, 10).Page)
	assert.Equal(t, 1, NewPagination(-3, 10).Page)
	assert.Equal(t, 4, NewPagination(4, 10).Page)
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, Pagination{Page: 3, PageSize: 10}.Offset())
	assert.Equal(t, 0, Pagination{Page: 0, PageSize: 10}.Offset())
}

func TestPagination_HugePageDoesNotOverflow(t *testing.T) {
	p := NewPagination(math.MaxInt, 10)
	assert.Equal(t, math.MaxInt/10, p.Page)
	assert.Equal(t, (math.MaxInt/10-1)*10, p.Offset())
	assert.GreaterOrEqual(t, p.Offset(), 0)

	assert.GreaterOrEqual(t, Pagination{Page: math.MaxInt, PageSize: 10}.Offset(), 0)
	assert.GreaterOrEqual(t, Pagination{Page: math.MaxInt, PageSize: 1}.Offset(), 0)
	assert.Equal(t, math.MaxInt-1, NewPagination(math.MaxInt, 1).Offset())
}

func TestPagination_TotalPages(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 0, 0},
	}
	for _, c := range cases {
		p := Pagination{Page: 1, PageSize: c.size, Total: c.total}
		assert.Equal(t, c.want, p.TotalPages(), "total=%d size=%d", c.total, c.size)
	}
}
