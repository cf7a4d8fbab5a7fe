package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is the per-user career record. At most one exists per user,
// enforced by the unique index on UserID.
type Profile struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	UserID         uint                        `gorm:"uniqueIndex;not null" json:"user_id"`
	User           User                        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Company        string                      `json:"company,omitempty"`
	Website        string                      `json:"website,omitempty"`
	Location       string                      `json:"location,omitempty"`
	Bio            string                      `json:"bio,omitempty"`
	Status         string                      `gorm:"not null" json:"status"`
	GithubUsername string                      `json:"githubusername,omitempty"`
	Skills         datatypes.JSONSlice[string] `json:"skills"`
	Social         Social                      `gorm:"embedded;embeddedPrefix:social_" json:"social"`
	Experience     []Experience                `gorm:"constraint:OnDelete:CASCADE" json:"experience"`
	Education      []Education                 `gorm:"constraint:OnDelete:CASCADE" json:"education"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	DeletedAt      gorm.DeletedAt              `gorm:"index" json:"-"`
}

// Social holds the profile's social network links.
type Social struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience is a work history entry embedded in a profile. Entries are
// listed most-recent-first: a new entry always lands at index 0.
type Experience struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProfileID   uint       `gorm:"not null;index" json:"-"`
	Title       string     `gorm:"not null" json:"title"`
	Company     string     `gorm:"not null" json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `gorm:"not null" json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"-"`
}

// Education is a schooling entry embedded in a profile, ordered like Experience.
type Education struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProfileID    uint       `gorm:"not null;index" json:"-"`
	School       string     `gorm:"not null" json:"school"`
	Degree       string     `gorm:"not null" json:"degree"`
	FieldOfStudy string     `gorm:"not null" json:"fieldofstudy"`
	From         time.Time  `gorm:"not null" json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"-"`
}
