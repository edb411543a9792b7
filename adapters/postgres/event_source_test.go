package postgres

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorate/internal/errors"
)

func newMockSource(t *testing.T) (*eventSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src, err := NewEventSource(sqlx.NewDb(db, "postgres"), "events")
	require.NoError(t, err)
	return src.(*eventSource), mock
}

func TestEventSource_Streams(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT stream FROM events ORDER BY stream`)).
		WillReturnRows(sqlmock.NewRows([]string{"stream"}).AddRow("hash").AddRow("herb"))

	streams, err := src.Streams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hash", "herb"}, streams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSource_Timestamps(t *testing.T) {
	src, mock := newMockSource(t)
	rome := time.FixedZone("CET", 3600)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM events WHERE stream = $1`)).
		WithArgs("herb").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).
			AddRow(time.Date(2025, 3, 1, 9, 0, 0, 0, rome)).
			AddRow(time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)))

	ts, err := src.Timestamps(context.Background(), "herb")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
	}, ts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSource_UnknownStream(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM events WHERE stream = $1`)).
		WithArgs("wax").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	_, err := src.Timestamps(context.Background(), "wax")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestEventSource_QueryFailure(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT stream FROM events`)).
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := src.Streams(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeSourceError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNewEventSource_RejectsUnsafeTableNames(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"events; DROP TABLE users", "", "1events", "a.b.c"} {
		_, err := NewEventSource(sqlx.NewDb(db, "postgres"), table)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), table)
	}

	_, err = NewEventSource(sqlx.NewDb(db, "postgres"), "tracking.events")
	assert.NoError(t, err)
}
