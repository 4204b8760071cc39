package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered player. Users are soft-deleted only; the row
// is kept so clan links and stats stay resolvable.
type User struct {
	gorm.Model
	Username      string `gorm:"size:255;unique;not null"` // email-shaped login name
	DisplayName   string `gorm:"size:64;unique;not null"`
	PasswordHash  string `gorm:"size:255;not null"`
	VerifiedEmail *time.Time
	Deleted       *time.Time
	DeletedReason *string
	LastOnline    *time.Time

	ClanLinks []UserClanLink `gorm:"foreignKey:UserID"`
	Skins     []*Skin        `gorm:"many2many:user_skin_links;"`
	Servers   []Server       `gorm:"foreignKey:UserID"`
}
