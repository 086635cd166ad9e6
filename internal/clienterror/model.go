// Package clienterror keeps the log of errors reported by browser clients.
package clienterror

import "time"

// ClientError is one error reported by a front-end client.
type ClientError struct {
	ID        string
	Seq       int64
	Type      string
	Message   string
	Stack     *string
	UserCode  *string // nil when the client was not logged in
	PageURL   *string
	UserAgent *string
	Extra     map[string]any
	CreatedAt time.Time
}
