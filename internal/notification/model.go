package notification

import "time"

// Notification represents a notification in the system. Type is an
// open-ended tag: clients use it for icons and click routing but never
// validate it against a closed set, so new backend types need no client
// release.
type Notification struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"-"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}

// Well-known notification types issued by the escrow backend.
const (
	TypeInvoicePaid       = "invoice_paid"
	TypePayoutSent        = "payout_sent"
	TypeDisputeOpened     = "dispute_opened"
	TypeDisputeResolved   = "dispute_resolved"
	TypeMilestoneReleased = "milestone_released"
	TypeNewMessage        = "new_message"
)

// Feed is the payload served to the in-page notification list.
type Feed struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unreadCount"`
}
