package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cdoyle/beacon/internal/event"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const defaultEventTable = "accesslog"

// EventStore appends access events into Postgres. Rows are never updated or
// deleted by this service.
type EventStore struct {
	pool  querier
	table string
}

// NewEventStore creates a Postgres-backed EventStore using the provided
// pool config and table name (empty means "accesslog").
func NewEventStore(ctx context.Context, cfg PoolConfig, table string) (*EventStore, error) {
	if table == "" {
		table = defaultEventTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &EventStore{pool: pool, table: table}, nil
}

// NewEventStoreWithPool constructs a store from an existing pool (primarily
// for testing).
func NewEventStoreWithPool(pool querier, table string) (*EventStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = defaultEventTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &EventStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *EventStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Insert appends one access event row.
func (s *EventStore) Insert(ctx context.Context, evt event.AccessEvent) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("event store is not configured")
	}
	if evt.ID == "" {
		return fmt.Errorf("event id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	projecturl,
	country,
	region,
	city,
	isp,
	latitude,
	longitude,
	referer,
	domain,
	ip,
	useragent,
	requestdate,
	otherdata
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)`, s.table)

	args := []any{
		evt.ID,
		evt.Project,
		evt.Country,
		evt.Region,
		evt.City,
		evt.ISP,
		evt.Latitude,
		evt.Longitude,
		evt.Referer,
		evt.RefererDomain,
		evt.IP,
		evt.UserAgent,
		evt.RequestedAt,
		evt.ExtraData,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert access event: %w", err)
	}
	return nil
}
