package model

import (
	"time"

	"github.com/ikkim/screening-backend/internal/screening"
	"gorm.io/gorm"
)

// MatchOrigin records which side's detail creation ran the screening.
type MatchOrigin string

const (
	OriginPerson    MatchOrigin = "person"
	OriginBlacklist MatchOrigin = "blacklist"
)

// MatchRecord is one row of the match ledger. Rows are only ever inserted.
type MatchRecord struct {
	ID                  uint                `gorm:"primarykey" json:"id"`
	PersonID            uint                `gorm:"not null;uniqueIndex:idx_match_pair" json:"person_id"`
	BlacklistedPersonID uint                `gorm:"not null;uniqueIndex:idx_match_pair;index" json:"blacklisted_person_id"`
	IsMatch             bool                `gorm:"not null" json:"is_match"`
	Score               float64             `gorm:"not null" json:"score"`
	Kind                screening.MatchKind `gorm:"type:varchar(10);not null" json:"kind"`
	Origin              MatchOrigin         `gorm:"type:varchar(10);not null" json:"origin"`
	SearchDate          time.Time           `gorm:"not null;index" json:"search_date"`

	Person            *Person            `gorm:"foreignKey:PersonID;constraint:OnDelete:RESTRICT" json:"person,omitempty"`
	BlacklistedPerson *BlacklistedPerson `gorm:"foreignKey:BlacklistedPersonID;constraint:OnDelete:RESTRICT" json:"blacklisted_person,omitempty"`
}

func (MatchRecord) TableName() string {
	return "match_records"
}

func (m *MatchRecord) BeforeUpdate(tx *gorm.DB) error {
	return immutable("match_records")
}

func (m *MatchRecord) BeforeDelete(tx *gorm.DB) error {
	return immutable("match_records")
}
