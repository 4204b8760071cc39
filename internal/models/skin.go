package models

import "gorm.io/gorm"

// Skin is a cosmetic asset attachable to users and clans.
type Skin struct {
	gorm.Model
	Kind        string `gorm:"size:100;not null"`
	Unit        string `gorm:"size:100;not null"`
	ModelPath   string `gorm:"size:512;not null"`
	Description *string

	Users []*User `gorm:"many2many:user_skin_links;"`
	Clans []*Clan `gorm:"many2many:clan_skin_links;"`
}
