package models

import "time"

// Device is a client installation registered against an account. PushID is
// the identifier assigned by the external push relay, empty when the device
// never registered for push or has cleared its token.
type Device struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	Type       int       `json:"type"`
	PushToken  string    `json:"-"`
	PushID     string    `json:"-"`
	CreatedAt  time.Time `json:"creationDate"`
}
