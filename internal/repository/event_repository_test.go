package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/pkg/civil"
)

func newEventRepoMock(t *testing.T) (*EventRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := NewEventRepository(sqlxDB)
	repo.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	cleanup := func() {
		_ = sqlxDB.Close()
	}
	return repo, mock, cleanup
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

var eventRowColumns = []string{
	"id", "title", "description", "location", "date_type", "start_date", "end_date", "nth_occurrence", "day_of_week", "month", "base_year",
	"relative_period", "relative_unit", "relative_direction", "relative_event_name", "created_at", "updated_at",
}

func TestEventRepositoryList(t *testing.T) {
	repo, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("e1", "Christmas", nil, nil, "fixed", time.Date(2024, 12, 25, 0, 0, 0, 0, time.FixedZone("X", -5*3600)), nil, nil, nil, nil, nil, nil, nil, nil, nil, created, created).
		AddRow("e2", "Eve", "night before", nil, "relative", nil, nil, nil, nil, nil, nil, 1, "days", "before", "Christmas", created, created).
		AddRow("e3", "Thanksgiving", nil, "Home", "nth", nil, nil, 4, 4, 11, 2024, nil, nil, nil, nil, created, created)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events ORDER BY created_at ASC, id ASC")).WillReturnRows(rows)

	events, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)

	require.NotNil(t, events[0].StartDate)
	assert.Equal(t, civil.MustParse("2024-12-25"), *events[0].StartDate)
	assert.Nil(t, events[0].EndDate)

	require.NotNil(t, events[1].RelativeUnit)
	assert.Equal(t, models.UnitDays, *events[1].RelativeUnit)
	assert.Equal(t, models.DirectionBefore, *events[1].RelativeDirection)
	assert.Equal(t, "Christmas", *events[1].RelativeEventName)
	assert.Equal(t, "night before", *events[1].Description)

	assert.Equal(t, models.DateTypeNth, events[2].DateType)
	assert.Equal(t, 4, *events[2].NthOccurrence)
	assert.Equal(t, 2024, *events[2].BaseYear)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreateAssignsIdentity(t *testing.T) {
	repo, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs(anyArgs(len(eventRowColumns))...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	start := civil.MustParse("2024-07-04")
	event := &models.Event{Title: "Launch", DateType: models.DateTypeFixed, StartDate: &start}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, repo.now(), event.CreatedAt)
	assert.Equal(t, repo.now(), event.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreateManyUsesTransaction(t *testing.T) {
	repo, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).WithArgs(anyArgs(len(eventRowColumns))...).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).WithArgs(anyArgs(len(eventRowColumns))...).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	events := []*models.Event{
		{Title: "A", DateType: models.DateTypeFixed},
		{Title: "B", DateType: models.DateTypeFixed},
	}
	require.NoError(t, repo.CreateMany(context.Background(), events))
	assert.True(t, events[0].CreatedAt.Before(events[1].CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreateManyRollsBack(t *testing.T) {
	repo, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).WithArgs(anyArgs(len(eventRowColumns))...).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateMany(context.Background(), []*models.Event{{Title: "A", DateType: models.DateTypeFixed}})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateMissing(t *testing.T) {
	repo, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET title")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Event{ID: "missing", Title: "X", DateType: models.DateTypeFixed})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryDelete(t *testing.T) {
	repo, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateBaseYear(t *testing.T) {
	repo, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET base_year = $1, updated_at = $2 WHERE date_type = $3")).
		WithArgs(2026, repo.now(), "nth").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.UpdateBaseYear(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
