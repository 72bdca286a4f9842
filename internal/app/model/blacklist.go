package model

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"gorm.io/gorm"
)

// BlacklistEntry is a named source list, e.g. a sanctions publication.
type BlacklistEntry struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ShortName   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"short_name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (BlacklistEntry) TableName() string {
	return "blacklist_entries"
}

// BlacklistedPerson is listed on a BlacklistEntry. DeletedAt and
// OfficialDeletionNumber are either both set or both empty.
type BlacklistedPerson struct {
	ID                         uint       `gorm:"primarykey" json:"id"`
	BlacklistEntryID           uint       `gorm:"not null;index" json:"blacklist_entry_id"`
	Kind                       PersonKind `gorm:"column:type;type:varchar(20);not null;index" json:"type"`
	OfficialRegistrationNumber string     `gorm:"type:varchar(100);not null" json:"official_registration_number"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
	DeletedAt                  *time.Time `gorm:"index;check:chk_blacklisted_persons_deletion,(deleted_at IS NULL) = (official_deletion_number IS NULL)" json:"deleted_at,omitempty"`
	OfficialDeletionNumber     *string    `gorm:"type:varchar(100)" json:"official_deletion_number,omitempty"`

	BlacklistEntry  *BlacklistEntry           `gorm:"foreignKey:BlacklistEntryID;constraint:OnDelete:RESTRICT" json:"blacklist_entry,omitempty"`
	NaturalDetail   *BlacklistNaturalDetail   `gorm:"foreignKey:BlacklistedPersonID;constraint:OnDelete:RESTRICT" json:"natural_detail,omitempty"`
	JuridicalDetail *BlacklistJuridicalDetail `gorm:"foreignKey:BlacklistedPersonID;constraint:OnDelete:RESTRICT" json:"juridical_detail,omitempty"`
	Attributes      []AttributeValue          `gorm:"foreignKey:BlacklistedPersonID;constraint:OnDelete:RESTRICT" json:"attributes,omitempty"`
}

func (BlacklistedPerson) TableName() string {
	return "blacklisted_persons"
}

func (p *BlacklistedPerson) IsDeleted() bool {
	return p.DeletedAt != nil
}

func (p *BlacklistedPerson) BeforeSave(tx *gorm.DB) error {
	hasNumber := p.OfficialDeletionNumber != nil && strings.TrimSpace(*p.OfficialDeletionNumber) != ""
	if (p.DeletedAt != nil) != hasNumber {
		return fmt.Errorf("%w: blacklisted person %d", apperrors.ErrInconsistentDeletionState, p.ID)
	}
	return nil
}

func (p *BlacklistedPerson) BeforeDelete(tx *gorm.DB) error {
	return immutable("blacklisted_persons")
}

type BlacklistNaturalDetail struct {
	BlacklistedPersonID uint `gorm:"primaryKey;autoIncrement:false" json:"blacklisted_person_id"`
	NaturalIdentity
	CreatedAt time.Time `json:"created_at"`
}

func (BlacklistNaturalDetail) TableName() string {
	return "blacklist_natural_details"
}

func (d *BlacklistNaturalDetail) BeforeCreate(tx *gorm.DB) error {
	d.deriveFullName()
	return nil
}

func (d *BlacklistNaturalDetail) BeforeUpdate(tx *gorm.DB) error {
	return immutable("blacklist_natural_details")
}

func (d *BlacklistNaturalDetail) BeforeDelete(tx *gorm.DB) error {
	return immutable("blacklist_natural_details")
}

type BlacklistJuridicalDetail struct {
	BlacklistedPersonID uint `gorm:"primaryKey;autoIncrement:false" json:"blacklisted_person_id"`
	JuridicalIdentity
	CreatedAt time.Time `json:"created_at"`
}

func (BlacklistJuridicalDetail) TableName() string {
	return "blacklist_juridical_details"
}

func (d *BlacklistJuridicalDetail) BeforeUpdate(tx *gorm.DB) error {
	return immutable("blacklist_juridical_details")
}

func (d *BlacklistJuridicalDetail) BeforeDelete(tx *gorm.DB) error {
	return immutable("blacklist_juridical_details")
}

// AttributeValue is a free-form property of a blacklisted person, one value per name.
type AttributeValue struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	BlacklistedPersonID uint      `gorm:"not null;uniqueIndex:idx_attribute_person_name" json:"blacklisted_person_id"`
	Name                string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_attribute_person_name" json:"name"`
	Value               string    `gorm:"type:text;not null" json:"value"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (AttributeValue) TableName() string {
	return "blacklist_attribute_values"
}
