package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipper/infras/otel/mocks"
	"clipper/infras/postgres"
	"clipper/internal/domains/schedule/model"
	"clipper/internal/domains/schedule/repository"
)

const (
	loadQuery = "SELECT state FROM schedule_state WHERE id = $1"
	saveQuery = "INSERT INTO schedule_state (id, state) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, modified_at = now()"
)

func repositoryForTest(t *testing.T) (repository.Schedule, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	conn := sqlx.NewDb(db, "sqlmock")

	repo := repository.New(&postgres.Connection{Read: conn, Write: conn}, mocks.NewOtel())

	return repo, mock
}

// captureArg records the driver value it matched so a saved blob can be fed
// back through Load.
type captureArg struct {
	value driver.Value
}

func (c *captureArg) Match(v driver.Value) bool {
	c.value = v

	return true
}

func TestScheduleRepository_Load(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      model.State
		wantErr   bool
	}{
		{
			name: "missing row yields the default state",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(loadQuery)).
					WithArgs(1).
					WillReturnError(sql.ErrNoRows)
			},
			want: model.DefaultState(),
		},
		{
			name: "unreadable blob yields the default state",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(loadQuery)).
					WithArgs(1).
					WillReturnRows(sqlmock.NewRows([]string{"state"}).AddRow([]byte(`{not json`)))
			},
			want: model.DefaultState(),
		},
		{
			name: "stored blob is restored",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(loadQuery)).
					WithArgs(1).
					WillReturnRows(sqlmock.NewRows([]string{"state"}).
						AddRow([]byte(`{"bookings":{"2026-09-01":{"10:00":{"firstName":"Sara","lastName":"Ahmadi","phone":"09123456789"}}},"startHour":8,"endHour":18}`)))
			},
			want: func() model.State {
				state := model.DefaultState()
				state.SetWindow(8, 18)
				state.SetBooking("2026-09-01", "10:00", model.BookingRecord{FirstName: "Sara", LastName: "Ahmadi", Phone: "09123456789"})

				return state
			}(),
		},
		{
			name: "query failure surfaces an error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(loadQuery)).
					WithArgs(1).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := repositoryForTest(t)

			tt.setupMock(mock)

			state, err := repo.Load(context.Background())

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, state)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestScheduleRepository_SaveLoadRoundTrip(t *testing.T) {
	repo, mock := repositoryForTest(t)

	state := model.DefaultState()
	state.SetWindow(8, 18)
	state.SetBooking("2026-09-01", "10:00", model.BookingRecord{FirstName: " Sara ", LastName: "Ahmadi", Phone: "09123456789"})
	state.ToggleDayDisabled("2026-09-02")
	state.ToggleSlotDisabled("2026-09-01", "11:30")

	saved := &captureArg{}

	mock.ExpectExec(regexp.QuoteMeta(saveQuery)).
		WithArgs(1, saved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), state))
	require.NotNil(t, saved.value)

	blob, ok := saved.value.([]byte)
	if !ok {
		blob = []byte(saved.value.(string))
	}

	var marshaled model.State
	require.NoError(t, json.Unmarshal(blob, &marshaled))
	assert.Equal(t, state, marshaled)

	mock.ExpectQuery(regexp.QuoteMeta(loadQuery)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"state"}).AddRow(blob))

	restored, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, state, restored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_SaveError(t *testing.T) {
	repo, mock := repositoryForTest(t)

	mock.ExpectExec(regexp.QuoteMeta(saveQuery)).
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	err := repo.Save(context.Background(), model.DefaultState())
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
