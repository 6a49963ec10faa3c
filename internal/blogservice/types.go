package blogservice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/common"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

const (
	DefaultPageSize = 10

	SuccessBlogDeleted = "deleted"
	PermissionToEdit   = "You have permission to edit that."
	MembershipRequired = "You must become a member on Codingwithmitch.com to access the API. Visit https://codingwithmitch.com/enroll/"
	InvalidPage        = "Invalid page."

	ErrorNotAuthenticated = "You must be logged in to do that."
)

// Job keys.
const (
	jobSearchBlogPosts          = "searchBlogPosts"
	jobRestoreBlogListFromCache = "restoreBlogListFromCache"
	jobIsAuthorOfBlogPost       = "isAuthorOfBlogPost"
	jobDeleteBlogPost           = "deleteBlogPost"
	jobUpdateBlogPost           = "updateBlogPost"
	jobCreateNewBlogPost        = "createNewBlogPost"
)

const upsertConcurrency = 8

type BlogFields struct {
	BlogList          []storage.BlogPost
	SearchQuery       string
	Page              int
	IsQueryInProgress bool
	IsQueryExhausted  bool
}

type ViewBlogFields struct {
	BlogPost           *storage.BlogPost
	IsAuthorOfBlogPost bool
}

type BlogViewState struct {
	BlogFields     BlogFields
	ViewBlogFields ViewBlogFields
}

type CreateBlogViewState struct {
	BlogPost *storage.BlogPost
}

type BlogAPI interface {
	SearchListBlogPosts(ctx context.Context, token, query, ordering string, page int) (*api.BlogListSearchResponse, error)
	IsAuthorOfBlogPost(ctx context.Context, token, slug string) (*api.GenericResponse, error)
	DeleteBlogPost(ctx context.Context, token, slug string) (*api.GenericResponse, error)
	UpdateBlog(ctx context.Context, token, slug, title, body string, image *api.Image) (*api.BlogCreateUpdateResponse, error)
}

type CreateBlogAPI interface {
	CreateBlog(ctx context.Context, token, title, body string, image *api.Image) (*api.BlogCreateUpdateResponse, error)
}

type BlogStore interface {
	Insert(ctx context.Context, b *storage.BlogPost) (int64, error)
	UpdateBlogPost(ctx context.Context, pk int, title, body, image string) error
	DeleteBlogPost(ctx context.Context, pk int) error
	SearchOrdered(ctx context.Context, query, filterAndOrder string, page, pageSize int) ([]storage.BlogPost, error)
}

type Connectivity interface {
	IsConnectedToTheInternet() bool
}

type Options struct {
	Logger   *zap.Logger
	Timeout  time.Duration
	PageSize int
}

func (o Options) resourceOptions(key string) resource.Options {
	return resource.Options{Key: key, Timeout: o.Timeout, Logger: o.Logger}
}

type BlogService struct {
	api    BlogAPI
	posts  BlogStore
	conn   Connectivity
	memo   *common.Cache
	jobs   *resource.JobManager
	logger *zap.Logger
	opts   Options
}

type CreateBlogService struct {
	api    CreateBlogAPI
	posts  BlogStore
	conn   Connectivity
	jobs   *resource.JobManager
	logger *zap.Logger
	opts   Options
}
