// Package event defines the access-event record and the assembler that
// builds one from request metadata.
package event

import (
	"context"
	"net/url"
	"time"
)

// DefaultIP is recorded when the transport could not determine a client IP.
const DefaultIP = "255.255.255.255"

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// Meta carries the request-scoped hints the transport extracted from
// headers. Every field falls back to the empty string when the hint is
// missing; IP falls back to DefaultIP.
type Meta struct {
	TraceID   string
	Country   string
	Region    string
	City      string
	ISP       string
	Latitude  string
	Longitude string
	Referer   string
	IP        string
	UserAgent string
}

// AccessEvent is one immutable row of the append-only access log.
type AccessEvent struct {
	ID            string
	Project       string
	Country       string
	Region        string
	City          string
	ISP           string
	Latitude      string
	Longitude     string
	Referer       string
	RefererDomain string
	IP            string
	UserAgent     string
	// RequestedAt is the request timestamp in epoch milliseconds.
	RequestedAt int64
	// ExtraData is the serialized allow-listed extra-field mapping.
	ExtraData string
}

// Writer persists assembled events. Append-only: there is no update or
// delete path.
type Writer interface {
	Insert(ctx context.Context, evt AccessEvent) error
}

func refererDomain(referer string) string {
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
