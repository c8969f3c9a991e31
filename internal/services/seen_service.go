package services

import (
	"encoding/json"
	"strings"
	"time"

	applog "snackstack/internal/log"
	"snackstack/internal/nudge"
	"snackstack/internal/repos"
)

const (
	upsellSeenKey        = "upsellSeen"
	replenishmentSeenKey = "replenishmentNudgeSeen"

	DefaultReplenishmentCooldown = 24 * time.Hour
)

// SeenService keeps nudge fatigue state. Upsell state is stored under the
// browser session id; replenishment state under the customer (see
// CustomerOwner) so a dismissed reminder stays dismissed across logins.
// Storage and decoding failures are logged and read as "not seen".
type SeenService struct {
	State    *repos.StateRepo
	Cooldown time.Duration
}

func NewSeenService(state *repos.StateRepo, cooldown time.Duration) *SeenService {
	if cooldown <= 0 {
		cooldown = DefaultReplenishmentCooldown
	}
	return &SeenService{State: state, Cooldown: cooldown}
}

func (s *SeenService) HasSeenUpsell(owner, productID string) bool {
	return loadDoc[map[string]bool](s, owner, upsellSeenKey)[productID]
}

func (s *SeenService) MarkUpsellSeen(owner, productID string) {
	m := loadDoc[map[string]bool](s, owner, upsellSeenKey)
	m[productID] = true
	s.store(owner, upsellSeenKey, m)
}

// RecentlySeenReplenishment reports a reminder for productID shown within
// the cooldown.
func (s *SeenService) RecentlySeenReplenishment(owner, productID string, now time.Time) bool {
	ms, ok := loadDoc[map[string]int64](s, owner, replenishmentSeenKey)[productID]
	if !ok {
		return false
	}
	return now.Sub(time.UnixMilli(ms)) < s.Cooldown
}

func (s *SeenService) MarkReplenishmentSeen(owner string, now time.Time, productIDs ...string) {
	m := loadDoc[map[string]int64](s, owner, replenishmentSeenKey)
	for _, id := range productIDs {
		m[id] = now.UnixMilli()
	}
	s.store(owner, replenishmentSeenKey, m)
}

// loadDoc returns an empty document unless the stored one decodes cleanly.
func loadDoc[M ~map[string]V, V any](s *SeenService, owner, key string) M {
	raw, err := s.State.Get(owner, key)
	if err != nil {
		return M{}
	}
	var m M
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		applog.Warn(nil, "seen.decode.fail", err, map[string]any{"session": owner, "key": key})
		return M{}
	}
	if m == nil {
		return M{}
	}
	return m
}

func (s *SeenService) store(owner, key string, v any) {
	b, err := json.Marshal(v)
	if err == nil {
		err = s.State.Put(owner, key, string(b))
	}
	if err != nil {
		applog.Warn(nil, "seen.store.fail", err, map[string]any{"session": owner, "key": key})
	}
}

// CustomerOwner is the local_state owner for state that follows a customer
// rather than a browser session.
func CustomerOwner(email string) string {
	return "user:" + strings.ToLower(strings.TrimSpace(email))
}

// For binds the tracker to one browser session.
func (s *SeenService) For(sid string) nudge.SeenTracker { return ownerSeen{s: s, sid: sid} }

type ownerSeen struct {
	s   *SeenService
	sid string
}

// customer falls back to the session when no email is known.
func (o ownerSeen) customer(email string) string {
	if strings.TrimSpace(email) == "" {
		return o.sid
	}
	return CustomerOwner(email)
}

func (o ownerSeen) HasSeenUpsell(id string) bool { return o.s.HasSeenUpsell(o.sid, id) }
func (o ownerSeen) MarkUpsellSeen(id string)     { o.s.MarkUpsellSeen(o.sid, id) }
func (o ownerSeen) RecentlySeenReplenishment(email, id string, now time.Time) bool {
	return o.s.RecentlySeenReplenishment(o.customer(email), id, now)
}
func (o ownerSeen) MarkReplenishmentSeen(email string, now time.Time, ids ...string) {
	o.s.MarkReplenishmentSeen(o.customer(email), now, ids...)
}
