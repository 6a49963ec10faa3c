package blogservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/common"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

const isAuthorTTL = 5 * time.Minute

func NewBlogService(client BlogAPI, posts BlogStore, conn Connectivity, memo *common.Cache, opts Options) *BlogService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if memo == nil {
		memo = common.NewCache(isAuthorTTL, 10*time.Minute)
	}
	return &BlogService{
		api:    client,
		posts:  posts,
		conn:   conn,
		memo:   memo,
		jobs:   resource.NewJobManager("BlogRepository", opts.Logger),
		logger: opts.Logger,
		opts:   opts,
	}
}

type listResource = resource.NetworkBoundResource[api.BlogListSearchResponse, []storage.BlogPost, BlogViewState]

// SearchBlogPosts shows the cached page while the API is queried, upserts
// every returned post and answers from the cache.
func (s *BlogService) SearchBlogPosts(ctx context.Context, token *storage.AuthToken, query, filterAndOrder string, page int) <-chan resource.DataState[BlogViewState] {
	if !token.Valid() {
		return resource.ErrorState[BlogViewState](ErrorNotAuthenticated, resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable:   s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest:   true,
		CancelIfOffline:    false,
		LoadFromCacheFirst: true,
	}

	r := resource.Start(ctx, desc, resource.Handlers[api.BlogListSearchResponse, []storage.BlogPost, BlogViewState]{
		CreateCall: func(ctx context.Context) (*api.BlogListSearchResponse, error) {
			return s.api.SearchListBlogPosts(ctx, token.Value(), query, filterAndOrder, page)
		},
		LoadFromCache: func(ctx context.Context) (*BlogViewState, error) {
			return s.loadBlogList(ctx, query, filterAndOrder, page)
		},
		UpdateLocalDB: s.upsertBlogPosts,
		HandleSuccess: func(ctx context.Context, r *listResource, resp *api.BlogListSearchResponse) {
			posts := make([]storage.BlogPost, 0, len(resp.Results))
			for _, result := range resp.Results {
				posts = append(posts, s.toBlogPost(result))
			}

			if err := r.UpdateLocalDB(ctx, &posts); err != nil {
				s.logger.Warn("some blog posts were not cached", zap.Error(err))
			}
			r.CacheRequestAndReturn(ctx)
		},
		CacheRequestAndReturn: s.blogListFromCache(query, filterAndOrder, page),
	}, s.opts.resourceOptions(jobSearchBlogPosts))

	s.jobs.AddJob(jobSearchBlogPosts, r)
	return r.Updates()
}

// RestoreBlogListFromCache answers a list query from the cache only.
func (s *BlogService) RestoreBlogListFromCache(ctx context.Context, query, filterAndOrder string, page int) <-chan resource.DataState[BlogViewState] {
	r := resource.Start(ctx, resource.Descriptor{}, resource.Handlers[api.BlogListSearchResponse, []storage.BlogPost, BlogViewState]{
		CacheRequestAndReturn: s.blogListFromCache(query, filterAndOrder, page),
	}, s.opts.resourceOptions(jobRestoreBlogListFromCache))

	s.jobs.AddJob(jobRestoreBlogListFromCache, r)
	return r.Updates()
}

// IsAuthorOfBlogPost asks the API whether the session owner may edit the
// post. Answers are memoised per owner and slug.
func (s *BlogService) IsAuthorOfBlogPost(ctx context.Context, token *storage.AuthToken, slug string) <-chan resource.DataState[BlogViewState] {
	if !token.Valid() {
		return resource.ErrorState[BlogViewState](ErrorNotAuthenticated, resource.ResponseDialog)
	}

	key := common.CacheKeyIsAuthor(token.AccountPk, slug)
	if isAuthor, ok := s.memo.GetBool(key); ok {
		return resource.ReturnData(&BlogViewState{ViewBlogFields: ViewBlogFields{IsAuthorOfBlogPost: isAuthor}}, nil)
	}

	desc := resource.Descriptor{
		NetworkAvailable: s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest: true,
		CancelIfOffline:  true,
	}

	r := resource.Start(ctx, desc, resource.Handlers[api.GenericResponse, any, BlogViewState]{
		CreateCall: func(ctx context.Context) (*api.GenericResponse, error) {
			return s.api.IsAuthorOfBlogPost(ctx, token.Value(), slug)
		},
		HandleSuccess: func(ctx context.Context, r *resource.NetworkBoundResource[api.GenericResponse, any, BlogViewState], resp *api.GenericResponse) {
			isAuthor := resp.Response == PermissionToEdit
			s.memo.Set(key, isAuthor)
			r.OnCompleteJob(resource.DataStateOf(&BlogViewState{ViewBlogFields: ViewBlogFields{IsAuthorOfBlogPost: isAuthor}}, nil))
		},
	}, s.opts.resourceOptions(jobIsAuthorOfBlogPost))

	s.jobs.AddJob(jobIsAuthorOfBlogPost, r)
	return r.Updates()
}

// DeleteBlogPost deletes the post remotely and, on confirmation, from the
// cache.
func (s *BlogService) DeleteBlogPost(ctx context.Context, token *storage.AuthToken, post storage.BlogPost) <-chan resource.DataState[BlogViewState] {
	if !token.Valid() {
		return resource.ErrorState[BlogViewState](ErrorNotAuthenticated, resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable: s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest: true,
		CancelIfOffline:  true,
	}

	type deleteResource = resource.NetworkBoundResource[api.GenericResponse, storage.BlogPost, BlogViewState]

	r := resource.Start(ctx, desc, resource.Handlers[api.GenericResponse, storage.BlogPost, BlogViewState]{
		CreateCall: func(ctx context.Context) (*api.GenericResponse, error) {
			return s.api.DeleteBlogPost(ctx, token.Value(), post.Slug)
		},
		UpdateLocalDB: func(ctx context.Context, b *storage.BlogPost) error {
			return s.posts.DeleteBlogPost(ctx, b.Pk)
		},
		HandleSuccess: func(ctx context.Context, r *deleteResource, resp *api.GenericResponse) {
			if resp.Response != SuccessBlogDeleted {
				r.OnErrorReturn(resource.ErrorUnknown, true, false)
				return
			}

			if err := r.UpdateLocalDB(ctx, &post); err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
				s.logger.Warn("delete cached blog post", zap.String("slug", post.Slug), zap.Error(err))
			}
			s.memo.Delete(common.CacheKeyIsAuthor(token.AccountPk, post.Slug))

			r.OnCompleteJob(resource.DataStateOf[BlogViewState](nil, &resource.Response{Message: SuccessBlogDeleted, Type: resource.ResponseToast}))
		},
	}, s.opts.resourceOptions(jobDeleteBlogPost))

	s.jobs.AddJob(jobDeleteBlogPost, r)
	return r.Updates()
}

// UpdateBlogPost uploads new title, body and optional image for slug.
func (s *BlogService) UpdateBlogPost(ctx context.Context, token *storage.AuthToken, slug, title, body string, image *api.Image) <-chan resource.DataState[BlogViewState] {
	if !token.Valid() {
		return resource.ErrorState[BlogViewState](ErrorNotAuthenticated, resource.ResponseDialog)
	}
	body = sanitizeBody(body)
	if err := validateBlogFields(title, body); err != nil {
		return resource.ErrorState[BlogViewState](validationMessage(err), resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable: s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest: true,
		CancelIfOffline:  true,
	}

	type updateResource = resource.NetworkBoundResource[api.BlogCreateUpdateResponse, storage.BlogPost, BlogViewState]

	r := resource.Start(ctx, desc, resource.Handlers[api.BlogCreateUpdateResponse, storage.BlogPost, BlogViewState]{
		CreateCall: func(ctx context.Context) (*api.BlogCreateUpdateResponse, error) {
			return s.api.UpdateBlog(ctx, token.Value(), slug, title, body, image)
		},
		UpdateLocalDB: func(ctx context.Context, b *storage.BlogPost) error {
			return s.posts.UpdateBlogPost(ctx, b.Pk, b.Title, b.Body, b.Image)
		},
		HandleSuccess: func(ctx context.Context, r *updateResource, resp *api.BlogCreateUpdateResponse) {
			// A 200 can still carry a membership rejection
			if resp.Response == MembershipRequired {
				r.OnErrorReturn(resp.Response, true, false)
				return
			}

			updated := fromCreateUpdateResponse(s.logger, resp)
			if err := r.UpdateLocalDB(ctx, &updated); err != nil {
				s.logger.Warn("update cached blog post", zap.String("slug", updated.Slug), zap.Error(err))
			}

			r.OnCompleteJob(resource.DataStateOf(
				&BlogViewState{ViewBlogFields: ViewBlogFields{BlogPost: &updated, IsAuthorOfBlogPost: true}},
				&resource.Response{Message: resp.Response, Type: resource.ResponseToast},
			))
		},
	}, s.opts.resourceOptions(jobUpdateBlogPost))

	s.jobs.AddJob(jobUpdateBlogPost, r)
	return r.Updates()
}

func (s *BlogService) CancelActiveJobs() {
	s.jobs.CancelActiveJobs()
}

func (s *BlogService) loadBlogList(ctx context.Context, query, filterAndOrder string, page int) (*BlogViewState, error) {
	posts, err := s.posts.SearchOrdered(ctx, query, filterAndOrder, page, s.opts.PageSize)
	if err != nil {
		return nil, err
	}

	return &BlogViewState{BlogFields: BlogFields{
		BlogList:          posts,
		SearchQuery:       query,
		Page:              page,
		IsQueryInProgress: true,
	}}, nil
}

// blogListFromCache finishes a list job from the cache and flags the query
// exhausted once the cache holds fewer rows than the requested pages.
func (s *BlogService) blogListFromCache(query, filterAndOrder string, page int) func(context.Context, *listResource) {
	return func(ctx context.Context, r *listResource) {
		vs, err := s.loadBlogList(ctx, query, filterAndOrder, page)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.OnErrorReturn(err.Error(), true, false)
			return
		}

		vs.BlogFields.IsQueryInProgress = false
		vs.BlogFields.IsQueryExhausted = isQueryExhausted(page, s.opts.PageSize, len(vs.BlogFields.BlogList))
		r.OnCompleteJob(resource.DataStateOf(vs, nil))
	}
}

// upsertBlogPosts writes the posts in parallel. A failed row does not stop
// the others; failures are reported together once all writes are done.
func (s *BlogService) upsertBlogPosts(ctx context.Context, posts *[]storage.BlogPost) error {
	if posts == nil {
		return nil
	}

	var (
		mu       sync.Mutex
		failures []error
		g        errgroup.Group
	)
	g.SetLimit(upsertConcurrency)

	for i := range *posts {
		post := (*posts)[i]
		g.Go(func() error {
			if _, err := s.posts.Insert(ctx, &post); err != nil {
				s.logger.Error("upsert blog post", zap.Int("pk", post.Pk), zap.String("slug", post.Slug), zap.Error(err))
				mu.Lock()
				failures = append(failures, fmt.Errorf("blog post %d: %w", post.Pk, err))
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(failures...)
}

func isQueryExhausted(page, pageSize, cached int) bool {
	return page*pageSize > cached
}
