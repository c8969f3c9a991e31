package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"snackstack/internal/domain"
	applog "snackstack/internal/log"
	"snackstack/internal/nudge"
)

// DefaultSessionTTL is how long a session may go without a request before
// Sweep closes it.
const DefaultSessionTTL = 30 * time.Minute

// EngineService owns one nudge.Session per browser session id.
type EngineService struct {
	Config    nudge.Config
	Catalog   *CatalogService
	Carts     *CartService
	Seen      *SeenService
	History   nudge.OrderHistory
	Telemetry nudge.Telemetry
	Journal   nudge.Journal
	Scheduler nudge.Scheduler
	// LoginTimeout bounds the order history fetch after login.
	LoginTimeout time.Duration
	SessionTTL   time.Duration

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	s        *nudge.Session
	lastSeen time.Time
}

func NewEngineService(cfg nudge.Config, catalog *CatalogService, carts *CartService, seen *SeenService, history nudge.OrderHistory) *EngineService {
	return &EngineService{
		Config:       cfg,
		Catalog:      catalog,
		Carts:        carts,
		Seen:         seen,
		History:      history,
		Scheduler:    nudge.TimerScheduler{},
		LoginTimeout: 10 * time.Second,
		SessionTTL:   DefaultSessionTTL,
		sessions:     map[string]*liveSession{},
	}
}

// Session returns the running session for sid, starting one on first use.
func (e *EngineService) Session(sid string) *nudge.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.Scheduler.Now()
	if ls, ok := e.sessions[sid]; ok {
		ls.lastSeen = now
		return ls.s
	}
	deps := nudge.Deps{
		Catalog:   engineCatalog{e.Catalog},
		Cart:      sessionCart{s: e.Carts, sid: sid},
		Seen:      e.Seen.For(sid),
		Orders:    e.History,
		Telemetry: e.Telemetry,
		Journal:   e.Journal,
		Scheduler: e.Scheduler,
	}
	s := nudge.NewSession(sid, e.Config, deps)
	s.Start()
	e.sessions[sid] = &liveSession{s: s, lastSeen: now}
	applog.Info(nil, "engine.session.start", map[string]any{"session": sid})
	return s
}

// Lookup returns the running session for sid without starting one. A hit
// counts as activity for Sweep.
func (e *EngineService) Lookup(sid string) (*nudge.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls, ok := e.sessions[sid]
	if !ok {
		return nil, false
	}
	ls.lastSeen = e.Scheduler.Now()
	return ls.s, true
}

// Close tears down the session for sid, stopping its timers.
func (e *EngineService) Close(sid string) {
	e.mu.Lock()
	ls, ok := e.sessions[sid]
	delete(e.sessions, sid)
	e.mu.Unlock()
	if ok {
		ls.s.Close()
		applog.Info(nil, "engine.session.close", map[string]any{"session": sid})
	}
}

func (e *EngineService) CloseAll() {
	e.mu.Lock()
	all := e.sessions
	e.sessions = map[string]*liveSession{}
	e.mu.Unlock()
	for _, ls := range all {
		ls.s.Close()
	}
}

// Sweep closes every session with no request for SessionTTL and returns
// how many it closed.
func (e *EngineService) Sweep() int {
	ttl := e.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cutoff := e.Scheduler.Now().Add(-ttl)

	e.mu.Lock()
	var expired []*liveSession
	for sid, ls := range e.sessions {
		if ls.lastSeen.Before(cutoff) {
			expired = append(expired, ls)
			delete(e.sessions, sid)
		}
	}
	e.mu.Unlock()

	for _, ls := range expired {
		ls.s.Close()
		applog.Info(nil, "engine.session.expire", map[string]any{"session": ls.s.ID})
	}
	return len(expired)
}

// RunJanitor calls Sweep every interval until ctx is done.
func (e *EngineService) RunJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.Sweep()
		}
	}
}

func (e *EngineService) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

// AddToCart is the user's own add-to-cart; it may open the bundle upsell.
func (e *EngineService) AddToCart(sid, productID string, qty int) (domain.Product, error) {
	p, err := e.Catalog.GetProduct(productID)
	if err != nil {
		return domain.Product{}, err
	}
	if !p.InStock {
		return domain.Product{}, ErrOutOfStock
	}
	if err := e.Session(sid).AddToCart(p, qty); err != nil {
		return domain.Product{}, fmt.Errorf("add to cart: %w", err)
	}
	return p, nil
}

// Login authenticates the engine session and blocks until the order
// history fetch completes. Callers on a request path run it in a goroutine.
func (e *EngineService) Login(ctx context.Context, sid, email string) {
	ctx, cancel := context.WithTimeout(ctx, e.LoginTimeout)
	defer cancel()
	e.Session(sid).Login(ctx, email)
}

func (e *EngineService) Logout(sid string) {
	if s, ok := e.Lookup(sid); ok {
		s.Logout()
	}
}
