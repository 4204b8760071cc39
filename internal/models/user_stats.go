package models

import "time"

// UserStats is the per-(user, server) running aggregate. A row is created
// lazily the first time a user appears in a match update on a server, seeded
// at the configured baseline rating, and is never deleted.
//
// SkillRating is float internally during a match update; the stored value is
// rounded half away from zero on persistence. Truncation would bleed a point
// off every near-stationary update, rounding keeps equal players drawing at
// the baseline fixed point.
type UserStats struct {
	UserID   uint `gorm:"primaryKey"`
	ServerID uint `gorm:"primaryKey"`

	FirstSeen time.Time `gorm:"not null"`
	LastSeen  time.Time `gorm:"not null"`

	MatchesPlayedField   int `gorm:"not null;default:0"`
	MatchesPlayedCommand int `gorm:"not null;default:0"`
	MatchesWonField      int `gorm:"not null;default:0"`
	MatchesWonCommand    int `gorm:"not null;default:0"`

	SkillRating int `gorm:"not null"`

	User   User   `gorm:"foreignKey:UserID"`
	Server Server `gorm:"foreignKey:ServerID"`
}
