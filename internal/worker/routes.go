package worker

// routes maps a push message type to the in-app destination a click lands
// on. The type space is open-ended: anything not listed here falls back to
// the notification center.
var routes = map[string]string{
	"invoice_paid":       "/purchases",
	"payout_sent":        "/seller/payouts",
	"dispute_opened":     "/disputes",
	"dispute_resolved":   "/disputes",
	"milestone_released": "/purchases",
	"new_message":        "/messages",
}

// defaultRoute receives clicks for unknown or missing types.
const defaultRoute = "/notifications"

func routeFor(typ string) string {
	if path, ok := routes[typ]; ok {
		return path
	}
	return defaultRoute
}
