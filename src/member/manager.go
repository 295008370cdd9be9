package member

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/Kern046/8thWonderlandV4/src/types"
)

// activeWindow is how recently a member must have connected to count as
// active in the community stats.
const activeWindow = 21 * 24 * time.Hour

// Manager handles citizen accounts: registration, authentication against
// the stored credential digest, profile updates and the address book.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager { return &Manager{db: db} }

// NewMember carries a registration request.
type NewMember struct {
	Login    string
	Password string // clear; digested before storage
	Identity string
	Gender   int8
	Email    string
	Language string
}

func (m *Manager) Member(ctx context.Context, id uint64) (*types.Member, error) {
	var mb types.Member
	if err := m.db.WithContext(ctx).First(&mb, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mb, nil
}

func (m *Manager) MemberByLogin(ctx context.Context, login string) (*types.Member, error) {
	var mb types.Member
	if err := m.db.WithContext(ctx).First(&mb, "login = ?", login).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mb, nil
}

// Create validates and registers a new citizen. The region stays at -2
// until the member picks one from their profile.
func (m *Manager) Create(ctx context.Context, in NewMember) (*types.Member, error) {
	if !ValidIdentity(in.Identity) {
		return nil, ErrInvalidIdentity
	}
	if !ValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	if taken, err := m.exists(ctx, "identity = ?", in.Identity); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrIdentityTaken
	}
	if taken, err := m.exists(ctx, "login = ?", in.Login); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrLoginTaken
	}
	if taken, err := m.exists(ctx, "email = ?", in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	now := time.Now().UTC()
	mb := types.Member{
		Login:           in.Login,
		Password:        PasswordDigest(in.Password),
		Identity:        in.Identity,
		Gender:          in.Gender,
		Email:           in.Email,
		Language:        in.Language,
		Region:          -2,
		LastConnectedAt: now,
		CreatedAt:       now,
		IsEnabled:       true,
	}
	if err := m.db.WithContext(ctx).Create(&mb).Error; err != nil {
		return nil, fmt.Errorf("member insert: %w", err)
	}
	return &mb, nil
}

// Authenticate matches a login/credential-digest pair and stamps the
// connection time. A failed stamp is logged, never fatal to the login.
func (m *Manager) Authenticate(ctx context.Context, login, digest string) (*types.Member, error) {
	mb, err := m.MemberByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if mb.Password != digest {
		return nil, ErrBadCredentials
	}
	if !mb.IsEnabled || mb.IsBanned {
		return nil, ErrAccountDisabled
	}

	res := m.db.WithContext(ctx).
		Model(&types.Member{}).
		Where("id = ?", mb.ID).
		Update("last_connected_at", time.Now().UTC())
	if res.Error != nil || res.RowsAffected == 0 {
		log.Printf("failed to stamp connection for %s: %v", mb.Identity, res.Error)
	}
	return mb, nil
}

// UpdatePassword replaces the stored digest for a login.
func (m *Manager) UpdatePassword(ctx context.Context, login, digest string) error {
	res := m.db.WithContext(ctx).
		Model(&types.Member{}).
		Where("login = ?", login).
		Update("password", digest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate lists the fields a member may change; nil means keep.
type ProfileUpdate struct {
	Login    *string
	Identity *string
	Password *string // clear
	Gender   *int8
	Email    *string
	Avatar   *string
	Language *string
	Country  *string
	Region   *int32
}

// UpdateProfile applies a partial profile change with the same
// validations as registration.
func (m *Manager) UpdateProfile(ctx context.Context, id uint64, up ProfileUpdate) error {
	fields := map[string]interface{}{}
	if up.Identity != nil {
		if !ValidIdentity(*up.Identity) {
			return ErrInvalidIdentity
		}
		if taken, err := m.exists(ctx, "identity = ? AND id <> ?", *up.Identity, id); err != nil {
			return err
		} else if taken {
			return ErrIdentityTaken
		}
		fields["identity"] = *up.Identity
	}
	if up.Email != nil {
		if !ValidEmail(*up.Email) {
			return ErrInvalidEmail
		}
		if taken, err := m.exists(ctx, "email = ? AND id <> ?", *up.Email, id); err != nil {
			return err
		} else if taken {
			return ErrEmailTaken
		}
		fields["email"] = *up.Email
	}
	if up.Login != nil {
		if taken, err := m.exists(ctx, "login = ? AND id <> ?", *up.Login, id); err != nil {
			return err
		} else if taken {
			return ErrLoginTaken
		}
		fields["login"] = *up.Login
	}
	if up.Password != nil {
		fields["password"] = PasswordDigest(*up.Password)
	}
	if up.Gender != nil {
		fields["gender"] = *up.Gender
	}
	if up.Avatar != nil {
		fields["avatar"] = *up.Avatar
	}
	if up.Language != nil {
		fields["language"] = *up.Language
	}
	if up.Country != nil {
		fields["country"] = *up.Country
	}
	if up.Region != nil {
		fields["region"] = *up.Region
	}
	if len(fields) == 0 {
		return nil
	}

	res := m.db.WithContext(ctx).Model(&types.Member{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Manager) CountMembers(ctx context.Context) (int64, error) {
	var n int64
	err := m.db.WithContext(ctx).Model(&types.Member{}).Count(&n).Error
	return n, err
}

// CountActiveMembers counts members seen within the activity window.
func (m *Manager) CountActiveMembers(ctx context.Context) (int64, error) {
	var n int64
	err := m.db.WithContext(ctx).
		Model(&types.Member{}).
		Where("last_connected_at > ?", time.Now().UTC().Add(-activeWindow)).
		Count(&n).Error
	return n, err
}

func (m *Manager) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var n int64
	err := m.db.WithContext(ctx).Model(&types.Member{}).Where(query, args...).Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountryName is one entry of the localized country list.
type CountryName struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Countries lists country names in the requested language, falling back
// to English where no translation exists.
func (m *Manager) Countries(ctx context.Context, language string) ([]CountryName, error) {
	var rows []CountryName
	err := m.db.WithContext(ctx).Raw(
		`SELECT c.code, COALESCE(cl.name, c.name) AS name `+
			`FROM countries c `+
			`LEFT JOIN countries cl ON cl.code = c.code AND cl.language = ? `+
			`WHERE c.language = 'en' `+
			`ORDER BY name ASC`,
		language,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
