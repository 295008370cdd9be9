package group

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Kern046/8thWonderlandV4/src/types"
)

var (
	ErrNotFound       = errors.New("group not found")
	ErrContactUnknown = errors.New("contact member unknown")
)

const defaultPerPage = 15

// Manager lists groups, resolves their geographic affiliation and manages
// contact assignments. Membership rows are owned here as well.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager { return &Manager{db: db} }

// Summary is one row of the group directory.
type Summary struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ContactID       uint64    `json:"contactId"`
	ContactIdentity string    `json:"contactIdentity"`
	Type            string    `json:"type"`
	CreatedAt       time.Time `json:"createdAt"`
	MemberCount     int64     `json:"memberCount"`
}

// Page is one page of the group directory.
type Page struct {
	Items   []Summary `json:"items"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"perPage"`
}

// Groups pages through the directory ordered by name, each row carrying
// its contact identity and member count.
func (m *Manager) Groups(ctx context.Context, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	var total int64
	if err := m.db.WithContext(ctx).Model(&types.Group{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []Summary
	err := m.db.WithContext(ctx).Raw(
		`SELECT g.id, g.name, g.description, g.contact_id, `+
			`u.identity AS contact_identity, g.type, g.created_at, `+
			`(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS member_count `+
			`FROM `+"`groups`"+` g `+
			`INNER JOIN members u ON u.id = g.contact_id `+
			`ORDER BY g.name ASC LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return &Page{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// MapPoint is one regional group pin on the community map.
type MapPoint struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MemberCount int64   `json:"memberCount"`
}

// RegionalMap returns every group tied to a region with coordinates,
// with its member count. Groups whose region has no coordinates are
// left off the map.
func (m *Manager) RegionalMap(ctx context.Context) ([]MapPoint, error) {
	var points []MapPoint
	err := m.db.WithContext(ctx).Raw(
		`SELECT g.id, g.name, r.latitude, r.longitude, `+
			`(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS member_count `+
			`FROM `+"`groups`"+` g `+
			`INNER JOIN regions r ON r.id = g.region_id `+
			`WHERE r.latitude <> 0 OR r.longitude <> 0 `+
			`ORDER BY g.name ASC`,
	).Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

// Group fetches one group row.
func (m *Manager) Group(ctx context.Context, id uint64) (*types.Group, error) {
	var g types.Group
	if err := m.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// GroupsOf lists the groups a citizen belongs to, ordered by name.
func (m *Manager) GroupsOf(ctx context.Context, citizenID uint64) ([]types.Group, error) {
	var groups []types.Group
	err := m.db.WithContext(ctx).Raw(
		`SELECT g.* FROM `+"`groups`"+` g `+
			`INNER JOIN group_members gm ON gm.group_id = g.id `+
			`WHERE gm.citizen_id = ? ORDER BY g.name ASC`,
		citizenID,
	).Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateContact reassigns a group's contact. The new contact must already
// be a member of the group.
func (m *Manager) UpdateContact(ctx context.Context, groupID, contactID uint64) error {
	var n int64
	err := m.db.WithContext(ctx).
		Model(&types.GroupMember{}).
		Where("group_id = ? AND citizen_id = ?", groupID, contactID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrContactUnknown
	}

	res := m.db.WithContext(ctx).
		Model(&types.Group{}).
		Where("id = ?", groupID).
		Update("contact_id", contactID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Join adds a citizen to a group; joining twice is a no-op.
func (m *Manager) Join(ctx context.Context, groupID, citizenID uint64) error {
	if _, err := m.Group(ctx, groupID); err != nil {
		return err
	}
	var n int64
	err := m.db.WithContext(ctx).
		Model(&types.GroupMember{}).
		Where("group_id = ? AND citizen_id = ?", groupID, citizenID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return m.db.WithContext(ctx).Create(&types.GroupMember{
		GroupID:   groupID,
		CitizenID: citizenID,
		CreatedAt: time.Now().UTC(),
	}).Error
}

// ContactGroup pairs a group with its contact's identity.
type ContactGroup struct {
	GroupID         uint64 `json:"groupId"`
	GroupName       string `json:"groupName"`
	ContactID       uint64 `json:"contactId"`
	ContactIdentity string `json:"contactIdentity"`
}

// ContactGroups lists every group with its contact, ordered by group name.
func (m *Manager) ContactGroups(ctx context.Context) ([]ContactGroup, error) {
	var rows []ContactGroup
	err := m.db.WithContext(ctx).Raw(
		`SELECT g.id AS group_id, g.name AS group_name, `+
			`u.id AS contact_id, u.identity AS contact_identity `+
			`FROM `+"`groups`"+` g `+
			`INNER JOIN members u ON u.id = g.contact_id `+
			`ORDER BY g.name ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
