package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PerPage: DefaultPerPage}, PageRequest{}.Normalize())
	assert.Equal(t, PageRequest{Page: 3, PerPage: MaxPerPage}, PageRequest{Page: 3, PerPage: 1000}.Normalize())
	assert.Equal(t, 10, PageRequest{Page: 3, PerPage: 5}.Offset())

	huge := PageRequest{Page: 2305843009213693953, PerPage: 5}.Normalize()
	assert.Equal(t, MaxPage, huge.Page)
	assert.Positive(t, huge.Offset())
	assert.Positive(t, PageRequest{Page: MaxPage + 1, PerPage: MaxPerPage}.Normalize().Offset())
}

func TestPageRequestNormalizeWith(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PerPage: 3}, PageRequest{}.NormalizeWith(3))
	assert.Equal(t, PageRequest{Page: 2, PerPage: 7}, PageRequest{Page: 2, PerPage: 7}.NormalizeWith(3))
}

func TestPageRequestWindow(t *testing.T) {
	start, end := PageRequest{Page: 2, PerPage: 5}.Window(7)
	assert.Equal(t, 5, start)
	assert.Equal(t, 7, end)

	start, end = PageRequest{Page: 4, PerPage: 5}.Window(7)
	assert.Equal(t, 7, start)
	assert.Equal(t, 7, end)

	start, end = PageRequest{Page: 2305843009213693953, PerPage: 5}.Normalize().Window(7)
	assert.Equal(t, 7, start)
	assert.Equal(t, 7, end)
}

func TestNewPage(t *testing.T) {
	page := NewPage(PageRequest{Page: 2}, []string{"f", "g"}, 7)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.LastPage)
	assert.Equal(t, 5, page.PerPage)
	assert.Equal(t, 7, page.Total)

	empty := NewPage[string](PageRequest{}, nil, 0)
	assert.Equal(t, 1, empty.LastPage)
	assert.NotNil(t, empty.Data)
}
