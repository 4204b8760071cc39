package models

import (
	"time"

	"gorm.io/gorm"
)

// Clan represents a persistent social group of users with ranked membership.
// The tag is a short color-code-annotated string shown in-game; the icon is a
// base64-encoded square PNG.
type Clan struct {
	gorm.Model
	Tag     string `gorm:"size:32;unique;not null"`
	Name    string `gorm:"size:255;unique;not null"`
	Icon    string
	Deleted *time.Time

	UserLinks []UserClanLink `gorm:"foreignKey:ClanID"`
	Skins     []*Skin        `gorm:"many2many:clan_skin_links;"`
}
