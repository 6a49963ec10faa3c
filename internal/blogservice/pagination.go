package blogservice

import (
	"strings"

	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

// Pagination tracks the list query across pages. It is not safe for
// concurrent use.
type Pagination struct {
	Query          string
	FilterAndOrder string

	page       int
	inProgress bool
	exhausted  bool
	posts      []storage.BlogPost
}

func NewPagination(query, filterAndOrder string) *Pagination {
	return &Pagination{Query: query, FilterAndOrder: filterAndOrder, page: 1}
}

// LoadFirstPage resets the pager and returns page 1.
func (p *Pagination) LoadFirstPage() int {
	p.page = 1
	p.inProgress = true
	p.exhausted = false
	p.posts = nil
	return p.page
}

// NextPage advances when the previous page finished and more may exist.
func (p *Pagination) NextPage() (int, bool) {
	if p.exhausted || p.inProgress {
		return p.page, false
	}
	p.page++
	p.inProgress = true
	return p.page, true
}

// Handle applies a terminal list state. The returned response is what
// should still be shown to the user; running past the last page is not
// reported.
func (p *Pagination) Handle(state resource.DataState[BlogViewState]) (resource.Response, bool) {
	if !state.IsTerminal() {
		return resource.Response{}, false
	}
	p.inProgress = false

	if state.Error != nil {
		if IsPaginationDone(state.Error.Response.Message) {
			p.exhausted = true
			return resource.Response{}, false
		}
		return state.Error.Response, true
	}

	if v := state.Value(); v != nil {
		p.posts = v.BlogFields.BlogList
		p.exhausted = v.BlogFields.IsQueryExhausted
	}
	return state.Message()
}

func (p *Pagination) Page() int                 { return p.page }
func (p *Pagination) Exhausted() bool           { return p.exhausted }
func (p *Pagination) InProgress() bool          { return p.inProgress }
func (p *Pagination) Posts() []storage.BlogPost { return p.posts }

// IsPaginationDone reports whether msg is the API's answer to a page past
// the end of the list.
func IsPaginationDone(msg string) bool {
	return strings.Contains(msg, strings.TrimSuffix(InvalidPage, "."))
}
