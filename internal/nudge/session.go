package nudge

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"snackstack/internal/commerce"
	"snackstack/internal/domain"
	applog "snackstack/internal/log"
)

// Deps are the collaborators a Session consumes. Telemetry and Journal are
// optional.
type Deps struct {
	Catalog   Catalog
	Cart      Cart
	Seen      SeenTracker
	Orders    OrderHistory
	Telemetry Telemetry
	Journal   Journal
	Scheduler Scheduler
	Rand      *rand.Rand
	// Message selects exit-intent copy; commerce.ExitMessage when nil.
	Message MessageFunc
}

// Session is the engine for one browser session. All methods are safe for
// concurrent use; they serialize on the session lock together with timer
// callbacks.
type Session struct {
	ID string

	mu      sync.Mutex
	cfg     Config
	deps    Deps
	arb     *Arbiter
	email   string
	visible Payload
	closed  bool

	idle   *IdleDetector
	hes    *HesitationDetector
	exit   *ExitDetector
	bundle *BundleDetector
	repl   *ReplenishmentDetector
}

func NewSession(id string, cfg Config, deps Deps) *Session {
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Session{ID: id, cfg: cfg.withDefaults(), deps: deps, arb: NewArbiter()}
	s.idle = &IdleDetector{s: s}
	s.hes = &HesitationDetector{s: s, cards: map[string]*card{}}
	s.exit = &ExitDetector{s: s, message: deps.Message}
	s.bundle = &BundleDetector{s: s}
	s.repl = &ReplenishmentDetector{s: s}
	return s
}

// Start arms the idle timer. It is called once when the session is created
// by the registry.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.idle.arm()
	}
}

func (s *Session) Arbiter() *Arbiter { return s.arb }

func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Active returns the visible nudge, or a view of kind "none".
func (s *Session) Active() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return viewOf(s.visible)
}

// Handle dispatches one interaction event. absorbed reports that the
// browser should cancel the default action (back navigation while the exit
// nudge shows).
func (s *Session) Handle(ev Event) (absorbed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	if ev.Type.activity() {
		s.idle.activity()
	}
	switch ev.Type {
	case EventPointerDown, EventKeyDown, EventTouchStart, EventScroll:
	case EventPointerMove:
		if ev.ProductID != "" {
			s.hes.move(ev.ProductID, s.sample(ev))
		}
	case EventPointerEnter:
		s.hes.enter(ev.ProductID)
	case EventPointerLeave:
		s.hes.leave(ev.ProductID)
	case EventPageView:
		s.exit.mount(ev.ProductID)
	case EventPageLeave:
		s.exit.unmount()
	case EventViewportLeave:
		s.exit.viewportLeave(ev.Y)
	case EventBackNavigation:
		absorbed = s.exit.signal("back_navigation")
	case EventVisibilityHidden:
		s.exit.signal("visibility_hidden")
	default:
		return false, ErrUnknownEvent
	}
	return absorbed, nil
}

// Activity restarts the idle countdown.
func (s *Session) Activity() {
	_, _ = s.Handle(Event{Type: EventPointerDown})
}

// AddToCart is the user's own add-to-cart. It adds at full price and then
// runs the bundle upsell for the product.
func (s *Session) AddToCart(p domain.Product, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.deps.Cart.Add(p, qty, p.Price, nil); err != nil {
		return err
	}
	s.bundle.afterAdd(p)
	return nil
}

// Login marks the visitor authenticated and schedules the replenishment
// nudge. The order history fetch runs without the session lock; a later
// Login or Logout makes its result stale.
func (s *Session) Login(ctx context.Context, email string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.email = email
	gen := s.repl.begin()
	s.mu.Unlock()

	orders, err := s.deps.Orders.Orders(ctx, email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.repl.current(gen) {
		return
	}
	if err != nil {
		applog.Warn(nil, "replenishment.history.fail", err, s.fields(domain.Replenishment))
		return
	}
	s.repl.ready(orders)
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = ""
	s.repl.cancel()
}

// Act applies a user action to the visible nudge.
func (s *Session) Act(a Action) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, ErrClosed
	}
	if s.visible == nil {
		return Result{}, ErrNoActiveNudge
	}
	if a.Kind != domain.None && a.Kind != s.visible.Kind() {
		return Result{}, ErrKindMismatch
	}
	switch p := s.visible.(type) {
	case *IdlePayload:
		return s.idle.act(p, a)
	case *HesitationPayload:
		return s.hes.act(p, a)
	case *ExitPayload:
		return s.exit.act(p, a)
	case *VarietyPackPayload:
		return s.bundle.actPack(p, a)
	case *PairingPayload:
		return s.bundle.actPairing(p, a)
	case *ReplenishmentPayload:
		return s.repl.act(p, a)
	}
	return Result{}, ErrNoActiveNudge
}

// Close stops every timer and frees the slot. The session is unusable
// afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.idle.t.stop()
	s.hes.stopAll()
	s.exit.rearm.stop()
	s.repl.cancel()
	if s.visible != nil {
		s.arb.Release(s.visible.Kind())
		s.visible = nil
	}
}

// show makes p visible. The caller holds the slot for p.Kind().
func (s *Session) show(p Payload, productName string) {
	s.visible = p
	applog.Info(nil, "nudge.show", s.fields(p.Kind()))
	s.record(p.Kind(), "shown")
	if s.email == "" || s.deps.Telemetry == nil {
		return
	}
	email, kind, tel := s.email, p.Kind(), s.deps.Telemetry
	fields := s.fields(kind)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.SendNudge(ctx, email, productName, kind); err != nil {
			applog.Warn(nil, "nudge.telemetry.fail", err, fields)
		}
	}()
}

// hide clears the visible nudge and releases its slot.
func (s *Session) hide(outcome string) {
	if s.visible == nil {
		return
	}
	kind := s.visible.Kind()
	s.visible = nil
	s.arb.Release(kind)
	s.record(kind, outcome)
	applog.Info(nil, "nudge.close", map[string]any{"session": s.ID, "kind": kind.String(), "outcome": outcome})
}

func (s *Session) record(kind domain.Kind, outcome string) {
	if s.deps.Journal != nil {
		s.deps.Journal.Record(s.ID, kind, outcome)
	}
}

func (s *Session) fields(kind domain.Kind) map[string]any {
	return map[string]any{"session": s.ID, "kind": kind.String()}
}

func (s *Session) now() time.Time { return s.deps.Scheduler.Now() }

func (s *Session) sample(ev Event) Sample {
	t := ev.T
	if t == 0 {
		t = s.now().UnixMilli()
	}
	return Sample{X: ev.X, Y: ev.Y, T: t}
}

func (s *Session) products() ([]domain.Product, bool) {
	ps, err := s.deps.Catalog.Products()
	if err != nil {
		applog.Warn(nil, "nudge.catalog.fail", err, map[string]any{"session": s.ID})
		return nil, false
	}
	return ps, true
}

func comboID(prefix string) string { return prefix + "-" + uuid.NewString() }

// addDiscounted adds every product once at pct off under one combo id.
func (s *Session) addDiscounted(products []domain.Product, pct float64, prefix string) error {
	combo := comboID(prefix)
	for _, p := range products {
		d := &domain.Discount{OriginalPrice: p.Price, DiscountPercentage: pct, ComboID: combo}
		if err := s.deps.Cart.Add(p, 1, commerce.DiscountedPrice(p.Price, pct), d); err != nil {
			return err
		}
	}
	return nil
}

func findProduct(ps []domain.Product, id string) (domain.Product, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// timer is a detector-owned scheduled task. Callbacks whose timer was
// stopped or re-armed since scheduling are dropped.
type timer struct {
	h   Handle
	gen uint64
}

func (s *Session) arm(t *timer, d time.Duration, fire func()) {
	t.stop()
	gen := t.gen
	t.h = s.deps.Scheduler.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || t.gen != gen || t.h == nil {
			return
		}
		t.h = nil
		fire()
	})
}

func (t *timer) stop() {
	if t.h != nil {
		t.h.Stop()
		t.h = nil
	}
	t.gen++
}

func (t *timer) armed() bool { return t.h != nil }
