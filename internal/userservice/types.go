package userservice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

const (
	GenericAuthError = "Error"

	ErrorSaveAccountProperties = "Error saving account properties.\nTry restarting the app."
	ErrorSaveAuthToken         = "Error saving authentication token.\nTry restarting the app."
	ErrorNotAuthenticated      = "You must be logged in to do that."

	RespCheckPreviousAuthUserDone = "Done checking for previously authenticated user."
)

// Job keys.
const (
	jobAttemptLogin          = "attemptLogin"
	jobAttemptRegistration   = "attemptRegistration"
	jobCheckPreviousAuthUser = "checkPreviousAuthUser"
	jobGetAccountProperties  = "getAccountProperties"
	jobSaveAccountProperties = "saveAccountProperties"
	jobUpdatePassword        = "updatePassword"
)

type AuthViewState struct {
	AuthToken *storage.AuthToken
}

type AccountViewState struct {
	AccountProperties *storage.AccountProperties
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, email, username, password, password2 string) (*api.RegistrationResponse, error)
}

type AccountAPI interface {
	GetAccountProperties(ctx context.Context, token string) (*api.AccountProperties, error)
	SaveAccountProperties(ctx context.Context, token, email, username string) (*api.GenericResponse, error)
	UpdatePassword(ctx context.Context, token, currentPassword, newPassword, confirmNewPassword string) (*api.GenericResponse, error)
}

type AccountStore interface {
	InsertOrIgnore(ctx context.Context, a *storage.AccountProperties) (int64, error)
	InsertAndReplace(ctx context.Context, a *storage.AccountProperties) (int64, error)
	SearchByPk(ctx context.Context, pk int) (*storage.AccountProperties, error)
	SearchByEmail(ctx context.Context, email string) (*storage.AccountProperties, error)
	UpdateAccountProperties(ctx context.Context, pk int, email, username string) error
}

type TokenStore interface {
	Insert(ctx context.Context, t *storage.AuthToken) (int64, error)
	SearchByPk(ctx context.Context, pk int) (*storage.AuthToken, error)
}

type Prefs interface {
	PreviousAuthUser() string
	SetPreviousAuthUser(email string) error
}

type Connectivity interface {
	IsConnectedToTheInternet() bool
}

type Options struct {
	Logger  *zap.Logger
	Timeout time.Duration
}

func (o Options) resourceOptions(key string) resource.Options {
	return resource.Options{Key: key, Timeout: o.Timeout, Logger: o.Logger}
}

type AuthService struct {
	api      AuthAPI
	accounts AccountStore
	tokens   TokenStore
	prefs    Prefs
	conn     Connectivity
	jobs     *resource.JobManager
	logger   *zap.Logger
	opts     Options
}

type AccountService struct {
	api      AccountAPI
	accounts AccountStore
	conn     Connectivity
	jobs     *resource.JobManager
	logger   *zap.Logger
	opts     Options
}
