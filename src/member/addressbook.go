package member

import (
	"context"
	"time"
)

const defaultPerPage = 15

// AddressBookSearch narrows and pages the community address book.
type AddressBookSearch struct {
	GroupID  uint64 // 0 = everyone
	Language string // for country/region display names
	Page     int
	PerPage  int
}

// AddressBookEntry is one address book row, with the country and region
// already resolved to display names in the searcher's language.
type AddressBookEntry struct {
	ID              uint64    `json:"id"`
	Avatar          string    `json:"avatar"`
	Identity        string    `json:"identity"`
	Gender          int8      `json:"gender"`
	Email           string    `json:"email"`
	Language        string    `json:"language"`
	Country         string    `json:"country"`
	Region          string    `json:"region"`
	LastConnectedAt time.Time `json:"lastConnectedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AddressBookPage is one page of results plus the paging window.
type AddressBookPage struct {
	Items   []AddressBookEntry `json:"items"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"perPage"`
}

// AddressBook pages through members ordered by identity, optionally
// restricted to one group.
func (m *Manager) AddressBook(ctx context.Context, search AddressBookSearch) (*AddressBookPage, error) {
	if search.Page < 1 {
		search.Page = 1
	}
	if search.PerPage < 1 {
		search.PerPage = defaultPerPage
	}

	countQuery := `SELECT COUNT(*) FROM members u `
	query := `SELECT u.id, u.avatar, u.identity, u.gender, u.email, u.language, ` +
		`COALESCE(cl.name, ce.name, u.country) AS country, ` +
		`COALESCE(r.name, '') AS region, ` +
		`u.last_connected_at, u.created_at ` +
		`FROM members u ` +
		`LEFT JOIN countries cl ON cl.code = u.country AND cl.language = ? ` +
		`LEFT JOIN countries ce ON ce.code = u.country AND ce.language = 'en' ` +
		`LEFT JOIN regions r ON r.id = u.region `

	var (
		countArgs []interface{}
		args      = []interface{}{search.Language}
	)
	if search.GroupID != 0 {
		clause := `INNER JOIN group_members gm ON gm.citizen_id = u.id AND gm.group_id = ? `
		countQuery += clause
		query += clause
		countArgs = append(countArgs, search.GroupID)
		args = append(args, search.GroupID)
	}

	var total int64
	if err := m.db.WithContext(ctx).Raw(countQuery, countArgs...).Scan(&total).Error; err != nil {
		return nil, err
	}

	query += `ORDER BY u.identity ASC LIMIT ? OFFSET ?`
	args = append(args, search.PerPage, (search.Page-1)*search.PerPage)

	var items []AddressBookEntry
	if err := m.db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}

	return &AddressBookPage{
		Items:   items,
		Total:   total,
		Page:    search.Page,
		PerPage: search.PerPage,
	}, nil
}
