package userservice

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

func NewAuthService(client AuthAPI, accounts AccountStore, tokens TokenStore, prefs Prefs, conn Connectivity, opts Options) *AuthService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &AuthService{
		api:      client,
		accounts: accounts,
		tokens:   tokens,
		prefs:    prefs,
		conn:     conn,
		jobs:     resource.NewJobManager("AuthRepository", opts.Logger),
		logger:   opts.Logger,
		opts:     opts,
	}
}

// AttemptLogin logs in against the API and caches the account and token.
func (s *AuthService) AttemptLogin(ctx context.Context, email, password string) <-chan resource.DataState[AuthViewState] {
	// Validate the fields before touching the network
	if err := validateLoginFields(email, password); err != nil {
		return resource.ErrorState[AuthViewState](validationMessage(err), resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable: s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest: true,
		CancelIfOffline:  true,
	}

	r := resource.Start(ctx, desc, resource.Handlers[api.LoginResponse, any, AuthViewState]{
		CreateCall: func(ctx context.Context) (*api.LoginResponse, error) {
			return s.api.Login(ctx, email, password)
		},
		HandleSuccess: func(ctx context.Context, r *resource.NetworkBoundResource[api.LoginResponse, any, AuthViewState], resp *api.LoginResponse) {
			// Incorrect credentials come back as 200 with a sentinel body
			if resp.Response == GenericAuthError {
				r.OnErrorReturn(resp.ErrorMessage, true, false)
				return
			}

			// An existing row keeps its username, so the result is not checked
			if _, err := s.accounts.InsertOrIgnore(ctx, &storage.AccountProperties{Pk: resp.Pk, Email: resp.Email}); err != nil {
				s.logger.Error("insert account properties", zap.Int("pk", resp.Pk), zap.Error(err))
			}

			token := storage.NewAuthToken(resp.Pk, resp.Token)
			if !saveToken(ctx, s.tokens, s.logger, r, token) {
				return
			}

			s.saveAuthenticatedUserToPrefs(email)
			r.OnCompleteJob(resource.DataStateOf(&AuthViewState{AuthToken: token}, nil))
		},
	}, s.opts.resourceOptions(jobAttemptLogin))

	s.jobs.AddJob(jobAttemptLogin, r)
	return r.Updates()
}

// AttemptRegistration creates the account remotely. Registration is
// authoritative for the username, so the cached row is replaced.
func (s *AuthService) AttemptRegistration(ctx context.Context, email, username, password, confirmPassword string) <-chan resource.DataState[AuthViewState] {
	if err := validateRegistrationFields(email, username, password, confirmPassword); err != nil {
		return resource.ErrorState[AuthViewState](validationMessage(err), resource.ResponseDialog)
	}

	desc := resource.Descriptor{
		NetworkAvailable: s.conn.IsConnectedToTheInternet(),
		IsNetworkRequest: true,
		CancelIfOffline:  true,
	}

	r := resource.Start(ctx, desc, resource.Handlers[api.RegistrationResponse, any, AuthViewState]{
		CreateCall: func(ctx context.Context) (*api.RegistrationResponse, error) {
			return s.api.Register(ctx, email, username, password, confirmPassword)
		},
		HandleSuccess: func(ctx context.Context, r *resource.NetworkBoundResource[api.RegistrationResponse, any, AuthViewState], resp *api.RegistrationResponse) {
			if resp.Response == GenericAuthError {
				r.OnErrorReturn(resp.ErrorMessage, true, false)
				return
			}

			result, err := s.accounts.InsertAndReplace(ctx, &storage.AccountProperties{Pk: resp.Pk, Email: resp.Email, Username: resp.Username})
			if err != nil || result < 0 {
				s.logger.Error("replace account properties", zap.Int("pk", resp.Pk), zap.Error(err))
				r.OnCompleteJob(resource.ErrorStateOf[AuthViewState](resource.Response{Message: ErrorSaveAccountProperties, Type: resource.ResponseDialog}))
				return
			}

			token := storage.NewAuthToken(resp.Pk, resp.Token)
			if !saveToken(ctx, s.tokens, s.logger, r, token) {
				return
			}

			s.saveAuthenticatedUserToPrefs(email)
			r.OnCompleteJob(resource.DataStateOf(&AuthViewState{AuthToken: token}, nil))
		},
	}, s.opts.resourceOptions(jobAttemptRegistration))

	s.jobs.AddJob(jobAttemptRegistration, r)
	return r.Updates()
}

// CheckPreviousAuthUser restores the session of the last user from the
// cache. Nothing found is a normal outcome and never an error.
func (s *AuthService) CheckPreviousAuthUser(ctx context.Context) <-chan resource.DataState[AuthViewState] {
	email := s.prefs.PreviousAuthUser()
	if email == "" {
		s.logger.Debug("checkPreviousAuthUser: no previously authenticated user")
		return returnNoTokenFound()
	}

	r := resource.Start(ctx, resource.Descriptor{}, resource.Handlers[any, any, AuthViewState]{
		CacheRequestAndReturn: func(ctx context.Context, r *resource.NetworkBoundResource[any, any, AuthViewState]) {
			account, err := s.accounts.SearchByEmail(ctx, email)
			if err != nil {
				s.logNotFound("account", email, err)
				r.OnCompleteJob(noTokenFound())
				return
			}

			token, err := s.tokens.SearchByPk(ctx, account.Pk)
			if err != nil || !token.Valid() {
				s.logNotFound("auth token", email, err)
				r.OnCompleteJob(noTokenFound())
				return
			}

			r.OnCompleteJob(resource.DataStateOf(&AuthViewState{AuthToken: token}, nil))
		},
	}, s.opts.resourceOptions(jobCheckPreviousAuthUser))

	s.jobs.AddJob(jobCheckPreviousAuthUser, r)
	return r.Updates()
}

func (s *AuthService) CancelActiveJobs() {
	s.jobs.CancelActiveJobs()
}

// saveToken stores the token and fails the job when the write is rejected.
func saveToken[R any](ctx context.Context, tokens TokenStore, logger *zap.Logger, r *resource.NetworkBoundResource[R, any, AuthViewState], token *storage.AuthToken) bool {
	result, err := tokens.Insert(ctx, token)
	if err != nil || result < 0 {
		logger.Error("insert auth token", zap.Int("pk", token.AccountPk), zap.Error(err))
		r.OnCompleteJob(resource.ErrorStateOf[AuthViewState](resource.Response{Message: ErrorSaveAuthToken, Type: resource.ResponseDialog}))
		return false
	}
	return true
}

func (s *AuthService) saveAuthenticatedUserToPrefs(email string) {
	if err := s.prefs.SetPreviousAuthUser(email); err != nil {
		s.logger.Warn("remember authenticated user", zap.Error(err))
	}
}

func (s *AuthService) logNotFound(what, email string, err error) {
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		s.logger.Error("checkPreviousAuthUser: "+what+" lookup failed", zap.String("email", email), zap.Error(err))
		return
	}
	s.logger.Debug("checkPreviousAuthUser: "+what+" not found", zap.String("email", email))
}

func noTokenFound() resource.DataState[AuthViewState] {
	return resource.DataStateOf[AuthViewState](nil, &resource.Response{Message: RespCheckPreviousAuthUserDone, Type: resource.ResponseNone})
}

func returnNoTokenFound() <-chan resource.DataState[AuthViewState] {
	return resource.ReturnData[AuthViewState](nil, &resource.Response{Message: RespCheckPreviousAuthUserDone, Type: resource.ResponseNone})
}
