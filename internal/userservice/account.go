package userservice

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

func NewAccountService(client AccountAPI, accounts AccountStore, conn Connectivity, opts Options) *AccountService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &AccountService{
		api:      client,
		accounts: accounts,
		conn:     conn,
		jobs:     resource.NewJobManager("AccountRepository", opts.Logger),
		logger:   opts.Logger,
		opts:     opts,
	}
}

// GetAccountProperties shows the cached account first, refreshes it from
// the API and re-reads the cache after writing through.
func (s *AccountService) GetAccountProperties(ctx context.Context, token *storage.AuthToken) <-chan resource.DataState[AccountViewState] {
	if !token.Valid() {
		return resource.ErrorState[AccountViewState](ErrorNotAuthenticated, resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable:   s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest:   true,
		CancelIfOffline:    false,
		LoadFromCacheFirst: true,
	}

	type resourceT = resource.NetworkBoundResource[api.AccountProperties, storage.AccountProperties, AccountViewState]

	r := resource.Start(ctx, desc, resource.Handlers[api.AccountProperties, storage.AccountProperties, AccountViewState]{
		CreateCall: func(ctx context.Context) (*api.AccountProperties, error) {
			return s.api.GetAccountProperties(ctx, token.Value())
		},
		LoadFromCache: func(ctx context.Context) (*AccountViewState, error) {
			account, err := s.accounts.SearchByPk(ctx, token.AccountPk)
			if err != nil {
				if errors.Is(err, storage.ErrRecordNotFound) {
					return &AccountViewState{}, nil
				}
				return nil, err
			}
			return &AccountViewState{AccountProperties: account}, nil
		},
		UpdateLocalDB: func(ctx context.Context, a *storage.AccountProperties) error {
			return s.accounts.UpdateAccountProperties(ctx, a.Pk, a.Email, a.Username)
		},
		HandleSuccess: func(ctx context.Context, r *resourceT, resp *api.AccountProperties) {
			err := r.UpdateLocalDB(ctx, &storage.AccountProperties{Pk: resp.Pk, Email: resp.Email, Username: resp.Username})
			if err != nil {
				s.logger.Warn("update cached account properties", zap.Int("pk", resp.Pk), zap.Error(err))
			}
			r.CacheRequestAndReturn(ctx)
		},
	}, s.opts.resourceOptions(jobGetAccountProperties))

	s.jobs.AddJob(jobGetAccountProperties, r)
	return r.Updates()
}

// SaveAccountProperties pushes new email and username and mirrors them in
// the cache.
func (s *AccountService) SaveAccountProperties(ctx context.Context, token *storage.AuthToken, email, username string) <-chan resource.DataState[AccountViewState] {
	if !token.Valid() {
		return resource.ErrorState[AccountViewState](ErrorNotAuthenticated, resource.ResponseDialog)
	}
	if err := validateAccountFields(email, username); err != nil {
		return resource.ErrorState[AccountViewState](validationMessage(err), resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable: s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest: true,
		CancelIfOffline:  true,
	}

	type resourceT = resource.NetworkBoundResource[api.GenericResponse, storage.AccountProperties, AccountViewState]

	r := resource.Start(ctx, desc, resource.Handlers[api.GenericResponse, storage.AccountProperties, AccountViewState]{
		CreateCall: func(ctx context.Context) (*api.GenericResponse, error) {
			return s.api.SaveAccountProperties(ctx, token.Value(), email, username)
		},
		UpdateLocalDB: func(ctx context.Context, a *storage.AccountProperties) error {
			return s.accounts.UpdateAccountProperties(ctx, a.Pk, a.Email, a.Username)
		},
		HandleSuccess: func(ctx context.Context, r *resourceT, resp *api.GenericResponse) {
			err := r.UpdateLocalDB(ctx, &storage.AccountProperties{Pk: token.AccountPk, Email: email, Username: username})
			if err != nil {
				s.logger.Warn("update cached account properties", zap.Int("pk", token.AccountPk), zap.Error(err))
			}
			r.OnCompleteJob(resource.DataStateOf[AccountViewState](nil, &resource.Response{Message: resp.Response, Type: resource.ResponseToast}))
		},
	}, s.opts.resourceOptions(jobSaveAccountProperties))

	s.jobs.AddJob(jobSaveAccountProperties, r)
	return r.Updates()
}

func (s *AccountService) UpdatePassword(ctx context.Context, token *storage.AuthToken, currentPassword, newPassword, confirmNewPassword string) <-chan resource.DataState[AccountViewState] {
	if !token.Valid() {
		return resource.ErrorState[AccountViewState](ErrorNotAuthenticated, resource.ResponseDialog)
	}
	if err := validatePasswordFields(currentPassword, newPassword, confirmNewPassword); err != nil {
		return resource.ErrorState[AccountViewState](validationMessage(err), resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable: s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest: true,
		CancelIfOffline:  true,
	}

	r := resource.Start(ctx, desc, resource.Handlers[api.GenericResponse, any, AccountViewState]{
		CreateCall: func(ctx context.Context) (*api.GenericResponse, error) {
			return s.api.UpdatePassword(ctx, token.Value(), currentPassword, newPassword, confirmNewPassword)
		},
		HandleSuccess: func(ctx context.Context, r *resource.NetworkBoundResource[api.GenericResponse, any, AccountViewState], resp *api.GenericResponse) {
			r.OnCompleteJob(resource.DataStateOf[AccountViewState](nil, &resource.Response{Message: resp.Response, Type: resource.ResponseToast}))
		},
	}, s.opts.resourceOptions(jobUpdatePassword))

	s.jobs.AddJob(jobUpdatePassword, r)
	return r.Updates()
}

func (s *AccountService) CancelActiveJobs() {
	s.jobs.CancelActiveJobs()
}
