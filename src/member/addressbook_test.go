package member

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addressBookColumns() []string {
	return []string{
		"id", "avatar", "identity", "gender", "email", "language",
		"country", "region", "last_connected_at", "created_at",
	}
}

func TestAddressBook(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("pages with limit and offset", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members u`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(31))
		mock.ExpectQuery("SELECT u.id, u.avatar, u.identity").
			WithArgs("en", 15, 15).
			WillReturnRows(sqlmock.NewRows(addressBookColumns()).
				AddRow(5, "", "Alice W", 1, "alice@example.com", "en", "France", "Bretagne", now, now))

		page, err := mgr.AddressBook(ctx, AddressBookSearch{Language: "en", Page: 2, PerPage: 15})
		require.NoError(t, err)
		assert.Equal(t, int64(31), page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 15, page.PerPage)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "France", page.Items[0].Country)
		assert.Equal(t, "Bretagne", page.Items[0].Region)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("defaults kick in for page and size", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members u`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT u.id, u.avatar, u.identity").
			WithArgs("fr", defaultPerPage, 0).
			WillReturnRows(sqlmock.NewRows(addressBookColumns()))

		page, err := mgr.AddressBook(ctx, AddressBookSearch{Language: "fr"})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, defaultPerPage, page.PerPage)
		assert.Empty(t, page.Items)
	})

	t.Run("group filter joins membership", func(t *testing.T) {
		mgr, mock := newTestManager(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM members u INNER JOIN group_members`).
			WithArgs(uint64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery("SELECT u.id, u.avatar, u.identity").
			WithArgs("en", uint64(4), defaultPerPage, 0).
			WillReturnRows(sqlmock.NewRows(addressBookColumns()).
				AddRow(5, "", "Alice W", 1, "alice@example.com", "en", "", "", now, now).
				AddRow(6, "", "Bob", 2, "bob@example.com", "en", "", "", now, now))

		page, err := mgr.AddressBook(ctx, AddressBookSearch{GroupID: 4, Language: "en", Page: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "Alice W", page.Items[0].Identity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
