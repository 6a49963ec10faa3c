package blogservice

import (
	"context"

	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

func NewCreateBlogService(client CreateBlogAPI, posts BlogStore, conn Connectivity, opts Options) *CreateBlogService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CreateBlogService{
		api:    client,
		posts:  posts,
		conn:   conn,
		jobs:   resource.NewJobManager("CreateBlogRepository", opts.Logger),
		logger: opts.Logger,
		opts:   opts,
	}
}

// CreateNewBlogPost publishes a post and caches the server's copy of it.
func (s *CreateBlogService) CreateNewBlogPost(ctx context.Context, token *storage.AuthToken, title, body string, image *api.Image) <-chan resource.DataState[CreateBlogViewState] {
	if !token.Valid() {
		return resource.ErrorState[CreateBlogViewState](ErrorNotAuthenticated, resource.ResponseDialog)
	}
	body = sanitizeBody(body)
	if err := validateBlogFields(title, body); err != nil {
		return resource.ErrorState[CreateBlogViewState](validationMessage(err), resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable: s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest: true,
		CancelIfOffline:  true,
	}

	type createResource = resource.NetworkBoundResource[api.BlogCreateUpdateResponse, storage.BlogPost, CreateBlogViewState]

	r := resource.Start(ctx, desc, resource.Handlers[api.BlogCreateUpdateResponse, storage.BlogPost, CreateBlogViewState]{
		CreateCall: func(ctx context.Context) (*api.BlogCreateUpdateResponse, error) {
			return s.api.CreateBlog(ctx, token.Value(), title, body, image)
		},
		UpdateLocalDB: func(ctx context.Context, b *storage.BlogPost) error {
			_, err := s.posts.Insert(ctx, b)
			return err
		},
		HandleSuccess: func(ctx context.Context, r *createResource, resp *api.BlogCreateUpdateResponse) {
			if resp.Response == MembershipRequired {
				r.OnErrorReturn(resp.Response, true, false)
				return
			}

			created := fromCreateUpdateResponse(s.logger, resp)
			if err := r.UpdateLocalDB(ctx, &created); err != nil {
				s.logger.Warn("cache created blog post", zap.String("slug", created.Slug), zap.Error(err))
			}

			r.OnCompleteJob(resource.DataStateOf(
				&CreateBlogViewState{BlogPost: &created},
				&resource.Response{Message: resp.Response, Type: resource.ResponseDialog},
			))
		},
	}, s.opts.resourceOptions(jobCreateNewBlogPost))

	s.jobs.AddJob(jobCreateNewBlogPost, r)
	return r.Updates()
}

func (s *CreateBlogService) CancelActiveJobs() {
	s.jobs.CancelActiveJobs()
}
