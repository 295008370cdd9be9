package types

import "time"

// Members (citizens)
type Member struct {
	ID              uint64 `gorm:"primaryKey"`
	Login           string `gorm:"size:64;unique;not null"`
	Password        string `gorm:"size:128;not null"` // sha512 hex digest
	Salt            string `gorm:"size:64"`
	Identity        string `gorm:"size:64;unique;not null"`
	Gender          int8   `gorm:"default:0"`
	Email           string `gorm:"size:256;unique;not null"`
	Avatar          string `gorm:"size:256"`
	Language        string `gorm:"size:8;default:en"`
	Country         string `gorm:"size:4"`
	Region          int32  `gorm:"default:-2"` // -2 until the member picks one
	LastConnectedAt time.Time
	CreatedAt       time.Time
	IsEnabled       bool   `gorm:"default:true"`
	IsBanned        bool   `gorm:"default:false"`
	Theme           string `gorm:"size:32"`
}

// Countries, one row per (code, language)
type Country struct {
	Code     string `gorm:"primaryKey;size:4"`
	Language string `gorm:"primaryKey;size:8"`
	Name     string `gorm:"size:128;not null"`
}

// Regions carry the coordinates shown on the community map
type Region struct {
	ID        int32  `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null"`
	Latitude  float64
	Longitude float64
}

// Groups
type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"size:128;unique;not null"`
	Description string `gorm:"type:text"`
	ContactID   uint64 `gorm:"index;not null"`
	Type        string `gorm:"size:32"`
	RegionID    *int32 `gorm:"index"` // set for regional groups only
	CreatedAt   time.Time
}

// Group membership
type GroupMember struct {
	GroupID   uint64 `gorm:"primaryKey"`
	CitizenID uint64 `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// Motion themes (vote categories with a fixed voting window)
type MotionTheme struct {
	ID       uint32 `gorm:"primaryKey"`
	Label    string `gorm:"size:128;not null"`
	Duration int32  `gorm:"not null"` // days
}

// Motions
type Motion struct {
	ID          uint64 `gorm:"primaryKey"`
	ThemeID     uint32 `gorm:"index;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Means       string `gorm:"type:text"`
	AuthorID    uint64 `gorm:"index;not null"`
	CreatedAt   time.Time
	EndedAt     time.Time `gorm:"index;not null"`
	IsActive    bool      `gorm:"default:true"`
	IsApproved  bool      `gorm:"default:false"`
	Score       float64   `gorm:"default:0"`
}

// Vote tokens: one per (motion, citizen), proof a citizen voted without
// revealing the choice. The unique index is the authoritative guard
// against double voting.
type MotionVoteToken struct {
	ID        uint64    `gorm:"primaryKey"`
	MotionID  uint64    `gorm:"uniqueIndex:uniq_motion_citizen;not null"`
	CitizenID uint64    `gorm:"uniqueIndex:uniq_motion_citizen;not null"`
	Date      time.Time `gorm:"not null"`
	IP        string    `gorm:"size:64"`
}

// Vote records: the ballot content, tied to its token only through the
// sha512 hash. No citizen column here, ballot secrecy depends on it.
type MotionVote struct {
	ID       uint64 `gorm:"primaryKey"`
	MotionID uint64 `gorm:"index;not null"`
	Choice   bool   `gorm:"not null"`
	Hash     string `gorm:"size:128;not null"`
}
