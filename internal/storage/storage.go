// Package storage persists the notification configuration and the observed
// version state as pretty-printed JSON documents on disk. Both stores load
// once per process, keep the in-memory copy authoritative, and write through
// on every mutation.
package storage

import "errors"

// Sentinel errors returned by store mutations.
var (
	ErrSubscriptionExists   = errors.New("subscription already exists")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrChannelNotFound      = errors.New("channel has no subscriptions")
)
