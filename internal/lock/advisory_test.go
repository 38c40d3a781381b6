package lock

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockConn(t *testing.T) (*sql.Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func expectGetLock(mock sqlmock.Sqlmock, name string, timeout int, result any) {
	mock.ExpectQuery(`SELECT GET_LOCK\(\?, \?\)`).
		WithArgs(name, timeout).
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(result))
}

func expectReleaseLock(mock sqlmock.Sqlmock, name string, result any) {
	mock.ExpectQuery(`SELECT RELEASE_LOCK\(\?\)`).
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(result))
}

func TestNewAdvisoryLock(t *testing.T) {
	conn, _ := newMockConn(t)
	l := NewAdvisoryLock(conn, "test_lock")

	assert.Equal(t, "test_lock", l.LockName())
	assert.False(t, l.IsHeld())
}

func TestAdvisoryLock_AcquireLock(t *testing.T) {
	tests := []struct {
		name     string
		result   any
		acquired bool
		wantErr  string
	}{
		{name: "obtained", result: 1, acquired: true},
		{name: "timeout", result: 0, acquired: false},
		{name: "null", result: nil, wantErr: "GET_LOCK returned NULL"},
		{name: "unexpected", result: 7, wantErr: "unexpected GET_LOCK return value: 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newMockConn(t)
			expectGetLock(mock, "l", TimeoutShort, tt.result)

			l := NewAdvisoryLock(conn, "l")
			acquired, err := l.AcquireLock(context.Background(), TimeoutShort)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.acquired, acquired)
			assert.Equal(t, tt.acquired, l.IsHeld())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdvisoryLock_AcquireLock_AlreadyHeld(t *testing.T) {
	conn, mock := newMockConn(t)
	expectGetLock(mock, "l", TimeoutImmediate, 1)

	l := NewAdvisoryLock(conn, "l")
	acquired, err := l.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, acquired)

	// Second acquire must not hit the database.
	acquired, err = l.AcquireLock(context.Background(), TimeoutMedium)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisoryLock_AcquireLock_QueryError(t *testing.T) {
	conn, mock := newMockConn(t)
	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnError(errors.New("connection reset"))

	l := NewAdvisoryLock(conn, "l")
	acquired, err := l.AcquireLock(context.Background(), TimeoutShort)

	require.Error(t, err)
	assert.False(t, acquired)
	assert.Contains(t, err.Error(), "failed to execute GET_LOCK")
}

func TestAdvisoryLock_ReleaseLock(t *testing.T) {
	t.Run("not held", func(t *testing.T) {
		conn, mock := newMockConn(t)
		released, err := NewAdvisoryLock(conn, "l").ReleaseLock(context.Background())
		require.NoError(t, err)
		assert.False(t, released)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("released", func(t *testing.T) {
		conn, mock := newMockConn(t)
		expectGetLock(mock, "l", TimeoutShort, 1)
		expectReleaseLock(mock, "l", 1)

		l := NewAdvisoryLock(conn, "l")
		_, err := l.AcquireLock(context.Background(), TimeoutShort)
		require.NoError(t, err)

		released, err := l.ReleaseLock(context.Background())
		require.NoError(t, err)
		assert.True(t, released)
		assert.False(t, l.IsHeld())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owned by another session", func(t *testing.T) {
		conn, mock := newMockConn(t)
		expectGetLock(mock, "l", TimeoutShort, 1)
		expectReleaseLock(mock, "l", 0)

		l := NewAdvisoryLock(conn, "l")
		_, err := l.AcquireLock(context.Background(), TimeoutShort)
		require.NoError(t, err)

		released, err := l.ReleaseLock(context.Background())
		require.NoError(t, err)
		assert.False(t, released)
		assert.False(t, l.IsHeld())
	})

	t.Run("null", func(t *testing.T) {
		conn, mock := newMockConn(t)
		expectGetLock(mock, "l", TimeoutShort, 1)
		expectReleaseLock(mock, "l", nil)

		l := NewAdvisoryLock(conn, "l")
		_, err := l.AcquireLock(context.Background(), TimeoutShort)
		require.NoError(t, err)

		_, err = l.ReleaseLock(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock did not exist")
		assert.False(t, l.IsHeld())
	})
}

func TestWithLock_RunsAndReleases(t *testing.T) {
	conn, mock := newMockConn(t)
	expectGetLock(mock, "dicttree:edit:dict_type", TimeoutMedium, 1)
	expectReleaseLock(mock, "dicttree:edit:dict_type", 1)

	l := NewEditLock(conn, "dict_type")
	ran := false
	err := l.WithLock(context.Background(), TimeoutMedium, func() error {
		ran = true
		assert.True(t, l.IsHeld())
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, l.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLock_PropagatesError(t *testing.T) {
	conn, mock := newMockConn(t)
	expectGetLock(mock, "l", TimeoutShort, 1)
	expectReleaseLock(mock, "l", 1)

	fnErr := errors.New("write failed")
	err := NewAdvisoryLock(conn, "l").WithLock(context.Background(), TimeoutShort, func() error {
		return fnErr
	})

	assert.ErrorIs(t, err, fnErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLock_ReleasesOnPanic(t *testing.T) {
	conn, mock := newMockConn(t)
	expectGetLock(mock, "l", TimeoutShort, 1)
	expectReleaseLock(mock, "l", 1)

	l := NewAdvisoryLock(conn, "l")
	assert.Panics(t, func() {
		_ = l.WithLock(context.Background(), TimeoutShort, func() error {
			panic("boom")
		})
	})
	assert.False(t, l.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLock_Timeout(t *testing.T) {
	conn, mock := newMockConn(t)
	expectGetLock(mock, "l", TimeoutShort, 0)

	ran := false
	err := NewAdvisoryLock(conn, "l").WithLock(context.Background(), TimeoutShort, func() error {
		ran = true
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Contains(t, err.Error(), `"l"`)
	assert.False(t, ran)
}

func TestWithLock_AcquireError(t *testing.T) {
	conn, mock := newMockConn(t)
	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnError(sql.ErrConnDone)

	err := NewAdvisoryLock(conn, "l").WithLock(context.Background(), TimeoutShort, func() error {
		t.Fatal("fn must not run")
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.False(t, errors.Is(err, ErrLockTimeout))
}

func TestGenerateEditLockName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"dict_type", "dicttree:edit:dict_type"},
		{"sys-dict", "dicttree:edit:sys-dict"},
		{"a b;c", "dicttree:edit:a_b_c"},
		{"类型", "dicttree:edit:__"},
		{"", "dicttree:edit:"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateEditLockName(tt.table), tt.table)
	}
}
