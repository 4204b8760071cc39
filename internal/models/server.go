package models

import (
	"time"

	"gorm.io/gorm"
)

// Server is a registered game server owned by a user. A server is considered
// online when Updated is within the configured recency window.
type Server struct {
	gorm.Model
	UserID             uint   `gorm:"not null;index"`
	PasswordHash       string `gorm:"size:255;not null"`
	HostName           string `gorm:"size:255;not null"`
	Port               int    `gorm:"not null"`
	DisplayName        string `gorm:"size:255;not null"`
	Description        string
	GameType           string `gorm:"size:100;not null"`
	CurrentPlayerCount int    `gorm:"not null;default:0"`
	CurrentMap         string `gorm:"size:255;default:''"`
	MaxPlayerCount     int    `gorm:"not null"`
	Updated            *time.Time
	Deleted            *time.Time
	DeletedReason      *string

	User User `gorm:"foreignKey:UserID"`
}
