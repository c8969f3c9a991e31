package nudge

import (
	"errors"
	"fmt"

	"snackstack/internal/domain"
)

type EventType string

const (
	EventPointerMove      EventType = "pointer_move"
	EventPointerDown      EventType = "pointer_down"
	EventKeyDown          EventType = "key_down"
	EventTouchStart       EventType = "touch_start"
	EventScroll           EventType = "scroll"
	EventPointerEnter     EventType = "pointer_enter"
	EventPointerLeave     EventType = "pointer_leave"
	EventPageView         EventType = "page_view"
	EventPageLeave        EventType = "page_leave"
	EventViewportLeave    EventType = "viewport_leave"
	EventBackNavigation   EventType = "back_navigation"
	EventVisibilityHidden EventType = "visibility_hidden"
)

// Event is one raw interaction forwarded by the browser. ProductID names
// the card (pointer events) or the product page (page and exit events).
// For viewport_leave, Y is the pointer's clientY.
type Event struct {
	Type      EventType `json:"type"`
	ProductID string    `json:"productId,omitempty"`
	X         float64   `json:"x,omitempty"`
	Y         float64   `json:"y,omitempty"`
	T         int64     `json:"t,omitempty"` // client timestamp, ms
}

var ErrUnknownEvent = errors.New("unknown event type")

func (t EventType) activity() bool {
	switch t {
	case EventPointerMove, EventPointerDown, EventKeyDown, EventTouchStart, EventScroll:
		return true
	}
	return false
}

// ActionName is a user action on the visible nudge.
type ActionName string

const (
	ActionDismiss     ActionName = "dismiss"
	ActionAddAll      ActionName = "add_all"
	ActionAddOne      ActionName = "add_one"
	ActionToggle      ActionName = "toggle"
	ActionConfirm     ActionName = "confirm"
	ActionUpgrade     ActionName = "upgrade"
	ActionReorder     ActionName = "reorder"
	ActionAddToCart   ActionName = "add_to_cart"
	ActionCheckout    ActionName = "checkout"
	ActionRemindLater ActionName = "remind_later"
)

// Action targets the visible nudge. Kind is optional; when set it must
// match the visible nudge so a stale client cannot act on a newer one.
type Action struct {
	Kind      domain.Kind `json:"kind,omitempty"`
	Name      ActionName  `json:"action"`
	ProductID string      `json:"productId,omitempty"`
}

// Result tells the client what happened. Navigate is set when the client
// should route somewhere (checkout goes to the cart).
type Result struct {
	Closed   bool   `json:"closed"`
	Navigate string `json:"navigate,omitempty"`
}

var (
	ErrNoActiveNudge  = errors.New("no active nudge")
	ErrKindMismatch   = errors.New("action targets a nudge that is not visible")
	ErrUnknownAction  = errors.New("unknown action")
	ErrUnknownProduct = errors.New("product not part of this nudge")
	ErrClosed         = errors.New("session closed")
)

func unknownAction(kind domain.Kind, name ActionName) error {
	return fmt.Errorf("%w %q for %s", ErrUnknownAction, name, kind)
}
