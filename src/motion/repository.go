package motion

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/Kern046/8thWonderlandV4/src/types"
)

// ActiveMotion is the lightweight projection returned for motion listings.
type ActiveMotion struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"createdAt"`
	EndedAt         time.Time `json:"endedAt"`
	HasAlreadyVoted bool      `json:"hasAlreadyVoted"`
}

// Details is the fully hydrated motion view: denormalized theme and author
// for display, score recomputed from the vote tallies at read time.
type Details struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Means           string    `json:"means"`
	ThemeID         uint32    `json:"themeId"`
	ThemeLabel      string    `json:"themeLabel"`
	AuthorID        uint64    `json:"authorId"`
	AuthorIdentity  string    `json:"authorIdentity"`
	CreatedAt       time.Time `json:"createdAt"`
	EndedAt         time.Time `json:"endedAt"`
	IsActive        bool      `json:"isActive"`
	IsApproved      bool      `json:"isApproved"`
	Score           float64   `json:"score"`
	HasAlreadyVoted bool      `json:"hasAlreadyVoted"`
}

// NewMotion carries the citizen-supplied fields of a motion to create.
type NewMotion struct {
	Title          string
	Description    string
	Means          string
	ThemeID        uint32
	AuthorID       uint64
	AuthorIdentity string
}

// Repository is the motion lifecycle manager: theme catalog, motion
// creation and lookup, and the transactional vote protocol.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

// Themes lists all vote categories, ordered by id.
func (r *Repository) Themes(ctx context.Context) ([]types.MotionTheme, error) {
	var themes []types.MotionTheme
	if err := r.db.WithContext(ctx).Order("id").Find(&themes).Error; err != nil {
		return nil, err
	}
	return themes, nil
}

// Theme resolves a single theme, ErrThemeNotFound on a missing id.
func (r *Repository) Theme(ctx context.Context, id uint32) (*types.MotionTheme, error) {
	var theme types.MotionTheme
	if err := r.db.WithContext(ctx).First(&theme, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, err
	}
	return &theme, nil
}

// ActiveMotions returns the lightweight projection of every motion whose
// voting window is still open, most recently ending first, annotated with
// whether the citizen already holds a vote token.
func (r *Repository) ActiveMotions(ctx context.Context, citizenID uint64) ([]ActiveMotion, error) {
	var rows []ActiveMotion
	err := r.db.WithContext(ctx).Raw(
		`SELECT m.id, m.title, m.created_at, m.ended_at, `+
			`mvt.citizen_id IS NOT NULL AS has_already_voted `+
			`FROM motions m `+
			`LEFT JOIN motion_vote_tokens mvt ON mvt.motion_id = m.id AND mvt.citizen_id = ? `+
			`WHERE m.ended_at > ? `+
			`ORDER BY m.ended_at DESC`,
		citizenID, time.Now().UTC(),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveMotionDetails is the hydrated counterpart of ActiveMotions, same
// predicate and order.
func (r *Repository) ActiveMotionDetails(ctx context.Context, citizenID uint64) ([]Details, error) {
	now := time.Now().UTC()
	var rows []Details
	err := r.db.WithContext(ctx).Raw(
		detailsSelect+
			`, mvt.citizen_id IS NOT NULL AS has_already_voted `+
			detailsJoins+
			`LEFT JOIN motion_vote_tokens mvt ON mvt.motion_id = m.id AND mvt.citizen_id = ? `+
			`WHERE m.ended_at > ? `+
			`ORDER BY m.ended_at DESC`,
		citizenID, now,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].IsActive = rows[i].EndedAt.After(now)
	}
	return rows, nil
}

const detailsSelect = `SELECT m.id, m.title, m.description, m.means, ` +
	`m.created_at, m.ended_at, m.is_approved, ` +
	`mt.id AS theme_id, mt.label AS theme_label, ` +
	`u.id AS author_id, u.identity AS author_identity, ` +
	`(SELECT COALESCE(SUM(CASE WHEN mv.choice = 1 THEN 1 ELSE -1 END), 0) ` +
	`FROM motion_votes mv WHERE mv.motion_id = m.id) AS score `

const detailsJoins = `FROM motions m ` +
	`INNER JOIN motion_themes mt ON mt.id = m.theme_id ` +
	`INNER JOIN members u ON u.id = m.author_id `

// Motion returns one hydrated motion, ErrMotionNotFound when no row
// matches. Activity is computed from the voting window at read time, the
// stored flag has no bearing on it.
func (r *Repository) Motion(ctx context.Context, id uint64) (*Details, error) {
	var row Details
	res := r.db.WithContext(ctx).Raw(
		detailsSelect+detailsJoins+`WHERE m.id = ?`, id,
	).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrMotionNotFound
	}
	row.IsActive = row.EndedAt.After(time.Now().UTC())
	return &row, nil
}

// CreateMotion validates the theme, fixes the voting window from the
// theme's duration and inserts the motion pending moderation. The window
// is captured once here and never recomputed.
func (r *Repository) CreateMotion(ctx context.Context, in NewMotion) (*Details, error) {
	theme, err := r.Theme(ctx, in.ThemeID)
	if err != nil {
		if errors.Is(err, ErrThemeNotFound) {
			return nil, ErrInvalidTheme
		}
		return nil, err
	}

	now := time.Now().UTC()
	m := types.Motion{
		ThemeID:     theme.ID,
		Title:       in.Title,
		Description: in.Description,
		Means:       in.Means,
		AuthorID:    in.AuthorID,
		CreatedAt:   now,
		EndedAt:     now.Add(time.Duration(theme.Duration) * 24 * time.Hour),
		IsActive:    true,
		IsApproved:  false,
	}
	res := r.db.WithContext(ctx).Create(&m)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: motion insert: %v", ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: motion insert affected no rows", ErrPersistence)
	}

	return &Details{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Means:          m.Means,
		ThemeID:        theme.ID,
		ThemeLabel:     theme.Label,
		AuthorID:       in.AuthorID,
		AuthorIdentity: in.AuthorIdentity,
		CreatedAt:      m.CreatedAt,
		EndedAt:        m.EndedAt,
		IsActive:       true,
		IsApproved:     false,
	}, nil
}

// HasAlreadyVoted reports whether a vote token exists for the pair.
func (r *Repository) HasAlreadyVoted(ctx context.Context, motionID, citizenID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&types.MotionVoteToken{}).
		Where("motion_id = ? AND citizen_id = ?", motionID, citizenID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateVote records a ballot atomically: a vote token proving the citizen
// voted, then a vote record carrying the choice and the audit hash. The
// unique index on (motion_id, citizen_id) is the authoritative guard
// against a double vote racing the HasAlreadyVoted check. Either both rows
// land or neither does.
func (r *Repository) CreateVote(ctx context.Context, motionID, citizenID uint64, identity string, at time.Time, ip string, choice bool) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransaction, tx.Error)
	}

	token := types.MotionVoteToken{
		MotionID:  motionID,
		CitizenID: citizenID,
		Date:      at,
		IP:        ip,
	}
	res := tx.Create(&token)
	if res.Error != nil {
		if err := rollback(tx, res.Error); err != nil {
			return err
		}
		if isDuplicateKey(res.Error) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("%w: vote token insert: %v", ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		if err := rollback(tx, nil); err != nil {
			return err
		}
		return fmt.Errorf("%w: vote token insert affected no rows", ErrPersistence)
	}

	record := types.MotionVote{
		MotionID: motionID,
		Choice:   choice,
		Hash:     VoteHash(token.ID, motionID, identity, choice, at, ip),
	}
	res = tx.Create(&record)
	if res.Error != nil || res.RowsAffected == 0 {
		if err := rollback(tx, res.Error); err != nil {
			return err
		}
		return fmt.Errorf("%w: vote record insert: %v", ErrPersistence, res.Error)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTransaction, err)
	}
	return nil
}

// rollback undoes the transaction; a rollback that itself fails leaves the
// storage state unknown and is escalated as ErrRollback.
func rollback(tx *gorm.DB, cause error) error {
	if err := tx.Rollback().Error; err != nil {
		return fmt.Errorf("%w: %v (rolling back after: %v)", ErrRollback, err, cause)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
