package subscription

import "time"

// Subscription is a browser-issued push credential: an endpoint at the
// platform push service plus the keys that encrypt messages to this one
// browser installation. Uploaded once after the client subscribes with our
// VAPID public key.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"-"`
	Endpoint  string    `json:"endpoint"`
	P256DH    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

// Keys mirrors the keys object of the browser PushSubscription JSON.
type Keys struct {
	P256DH string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Payload is the wire shape of an uploaded subscription.
type Payload struct {
	Endpoint string `json:"endpoint"`
	Keys     Keys   `json:"keys"`
}
