package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/cdoyle/beacon/internal/event"
)

func TestEventStore_InsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewEventStoreWithPool(mock, "accesslog")
	require.NoError(t, err)

	evt := event.AccessEvent{
		ID:            "img_ray-1",
		Project:       "ab12",
		Country:       "US",
		Region:        "CA",
		City:          "San Jose",
		ISP:           "ExampleNet",
		Latitude:      "37.33",
		Longitude:     "-121.89",
		Referer:       "https://shop.example.com/",
		RefererDomain: "shop.example.com",
		IP:            "203.0.113.9",
		UserAgent:     "Mozilla/5.0",
		RequestedAt:   1700000000123,
		ExtraData:     `{"foo":"1"}`,
	}

	mock.ExpectExec("INSERT INTO accesslog").
		WithArgs(
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
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Insert(context.Background(), evt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventStore_RequiresID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewEventStoreWithPool(mock, "")
	require.NoError(t, err)

	err = store.Insert(context.Background(), event.AccessEvent{})
	require.Error(t, err)
}

func TestEventStore_InsertErrorPropagates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewEventStoreWithPool(mock, "accesslog")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO accesslog").
		WillReturnError(errors.New("deadlock detected"))

	err = store.Insert(context.Background(), event.AccessEvent{ID: "x"})
	require.Error(t, err)
}

func TestNewEventStoreWithPool_RejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewEventStoreWithPool(mock, "access log; DROP TABLE")
	require.Error(t, err)
}
