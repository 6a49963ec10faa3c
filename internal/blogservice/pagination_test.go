package blogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

func listState(n int, exhausted bool) resource.DataState[BlogViewState] {
	return resource.DataStateOf(&BlogViewState{BlogFields: BlogFields{
		BlogList:         make([]storage.BlogPost, n),
		IsQueryExhausted: exhausted,
	}}, nil)
}

func TestIsQueryExhausted(t *testing.T) {
	testCases := []struct {
		page, pageSize, cached int
		want                   bool
	}{
		{page: 3, pageSize: 10, cached: 25, want: true},
		{page: 2, pageSize: 10, cached: 25, want: false},
		{page: 1, pageSize: 10, cached: 10, want: false},
		{page: 1, pageSize: 10, cached: 0, want: true},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, isQueryExhausted(tc.page, tc.pageSize, tc.cached))
	}
}

func TestPagination(t *testing.T) {
	p := NewPagination("", "-date_updated")

	assert.Equal(t, 1, p.LoadFirstPage())
	_, ok := p.NextPage()
	assert.False(t, ok, "page 1 still in progress")

	msg, show := p.Handle(listState(10, false))
	assert.False(t, show, msg)
	assert.Len(t, p.Posts(), 10)

	page, ok := p.NextPage()
	assert.True(t, ok)
	assert.Equal(t, 2, page)

	p.Handle(listState(15, true))
	assert.True(t, p.Exhausted())

	_, ok = p.NextPage()
	assert.False(t, ok)

	assert.Equal(t, 1, p.LoadFirstPage())
	assert.False(t, p.Exhausted())
	assert.Nil(t, p.Posts())
}

func TestPagination_InvalidPageIsNotShown(t *testing.T) {
	p := NewPagination("", "-date_updated")
	p.LoadFirstPage()
	p.Handle(listState(10, false))
	p.NextPage()

	_, show := p.Handle(resource.ErrorStateOf[BlogViewState](resource.Response{Message: InvalidPage, Type: resource.ResponseDialog}))
	assert.False(t, show)
	assert.True(t, p.Exhausted())
	assert.False(t, p.InProgress())
	assert.Len(t, p.Posts(), 10)
}

func TestPagination_OtherErrorsAreShown(t *testing.T) {
	p := NewPagination("", "-date_updated")
	p.LoadFirstPage()

	want := resource.Response{Message: "Invalid token.", Type: resource.ResponseDialog}
	got, show := p.Handle(resource.ErrorStateOf[BlogViewState](want))
	assert.True(t, show)
	assert.Equal(t, want, got)
	assert.False(t, p.Exhausted())

	_, show = p.Handle(resource.LoadingState[BlogViewState](true, nil))
	assert.False(t, show)
}
