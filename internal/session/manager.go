// Package session holds the current auth token and the connectivity check
// shared by the repositories.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/common"
	"github.com/sushihentaime/blogposts/internal/storage"
)

const connectivityTTL = 5 * time.Second

var errNoAccount = errors.New("token error, logging out user")

// TokenStore is the part of the auth token cache the session needs.
type TokenStore interface {
	NullifyToken(ctx context.Context, accountPk int) (int64, error)
}

// Manager owns the in-memory session. Create one per process with New and
// release it with Close.
type Manager struct {
	tokens TokenStore
	conn   Connectivity
	probe  string
	cache  *common.Cache
	logger *zap.Logger

	mu     sync.Mutex
	token  *storage.AuthToken
	subs   map[int]chan *storage.AuthToken
	nextID int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(tokens TokenStore, conn Connectivity, probeKey string, cache *common.Cache, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = common.NewCache(connectivityTTL, time.Minute)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		tokens: tokens,
		conn:   conn,
		probe:  probeKey,
		cache:  cache,
		logger: logger,
		subs:   make(map[int]chan *storage.AuthToken),
		ctx:    ctx,
		cancel: cancel,
	}
}

// CachedToken returns the current token or nil when logged out.
func (m *Manager) CachedToken() *storage.AuthToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Login publishes token unless it equals the current one.
func (m *Manager) Login(token *storage.AuthToken) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token.Equal(token) {
		return
	}
	m.setLocked(token)
}

// Logout nulls the persisted token of the current owner, then clears the
// session. The in-memory value is cleared even if persistence fails. The
// returned channel closes when logout has finished.
func (m *Manager) Logout() <-chan struct{} {
	done := make(chan struct{})
	current := m.CachedToken()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(done)

		var err error
		if current == nil || current.AccountPk == storage.NoAccount {
			err = errNoAccount
		} else {
			_, err = m.tokens.NullifyToken(m.ctx, current.AccountPk)
		}
		if err != nil {
			m.logger.Error("logout", zap.Error(err))
		}

		m.mu.Lock()
		m.setLocked(nil)
		m.mu.Unlock()
	}()

	return done
}

// Subscribe returns a channel that receives the current token and every
// change after it. Only the latest value is kept for slow readers.
func (m *Manager) Subscribe() (<-chan *storage.AuthToken, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	ch := make(chan *storage.AuthToken, 1)
	ch <- m.token
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
}

// IsConnectedToTheInternet probes the API host, memoising the answer briefly.
func (m *Manager) IsConnectedToTheInternet() bool {
	key := common.CacheKeyConnectivity(m.probe)
	if ok, hit := m.cache.GetBool(key); hit {
		return ok
	}

	if m.conn == nil {
		return false
	}

	ok := m.conn.Reachable(m.ctx)
	m.cache.Set(key, ok, connectivityTTL)
	if !ok {
		m.logger.Debug("api host unreachable", zap.String("host", m.probe))
	}
	return ok
}

// Close waits for pending logouts and closes every subscription.
func (m *Manager) Close() {
	m.wg.Wait()
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sub := range m.subs {
		delete(m.subs, id)
		close(sub)
	}
}

func (m *Manager) setLocked(token *storage.AuthToken) {
	m.token = token
	for _, sub := range m.subs {
		select {
		case <-sub:
		default:
		}
		sub <- token
	}
}
