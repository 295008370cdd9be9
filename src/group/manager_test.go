package group

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newTestManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewManager(db), mock
}

func TestGroups(t *testing.T) {
	mgr, mock := newTestManager(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `groups`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT g.id, g.name, g.description").
		WithArgs(15, 0).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "description", "contact_id", "contact_identity", "type", "created_at", "member_count"}).
			AddRow(1, "Brittany", "Regional group", 3, "Alice W", "regional", now, 12).
			AddRow(2, "Chess club", "Thematic group", 4, "Bob", "thematic", now, 5))

	page, err := mgr.Groups(context.Background(), 1, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Alice W", page.Items[0].ContactIdentity)
	assert.Equal(t, int64(12), page.Items[0].MemberCount)
}

func TestRegionalMap(t *testing.T) {
	mgr, mock := newTestManager(t)

	mock.ExpectQuery("SELECT g.id, g.name, r.latitude, r.longitude").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "latitude", "longitude", "member_count"}).
			AddRow(1, "Brittany", 48.3, -2.92, 12).
			AddRow(2, "Quebec", 46.789, -71.213, 7))

	points, err := mgr.RegionalMap(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 48.3, points[0].Latitude)
	assert.Equal(t, int64(7), points[1].MemberCount)
}

func TestUpdateContact(t *testing.T) {
	ctx := context.Background()

	t.Run("contact must already belong to the group", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `group_members`").
			WithArgs(uint64(1), uint64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := mgr.UpdateContact(ctx, 1, 9)
		assert.ErrorIs(t, err, ErrContactUnknown)
	})

	t.Run("reassigns the contact", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `group_members`").
			WithArgs(uint64(1), uint64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec("UPDATE `groups` SET `contact_id`").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, mgr.UpdateContact(ctx, 1, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vanished group is explicit", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `group_members`").
			WithArgs(uint64(404), uint64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec("UPDATE `groups` SET `contact_id`").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, mgr.UpdateContact(ctx, 404, 3), ErrNotFound)
	})
}

func TestJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("joining twice is a no-op", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery("SELECT (.+) FROM `groups`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "contact_id"}).
				AddRow(1, "Brittany", 3))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `group_members`").
			WithArgs(uint64(1), uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		assert.NoError(t, mgr.Join(ctx, 1, 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts a membership row", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery("SELECT (.+) FROM `groups`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "contact_id"}).
				AddRow(1, "Brittany", 3))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `group_members`").
			WithArgs(uint64(1), uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("INSERT INTO `group_members`").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, mgr.Join(ctx, 1, 5))
	})

	t.Run("unknown group", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery("SELECT (.+) FROM `groups`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		assert.ErrorIs(t, mgr.Join(ctx, 404, 5), ErrNotFound)
	})
}
