package model

import (
	"time"

	"gorm.io/gorm"
)

// Person is a registered natural or juridical person. Removal only ever sets
// DeletedAt together with a reason.
type Person struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	Kind           PersonKind `gorm:"column:type;type:varchar(20);not null;index" json:"type"`
	Active         bool       `gorm:"not null" json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	DeletionReason *string    `gorm:"type:text" json:"deletion_reason,omitempty"`

	NaturalDetail   *NaturalDetail   `gorm:"foreignKey:PersonID;constraint:OnDelete:RESTRICT" json:"natural_detail,omitempty"`
	JuridicalDetail *JuridicalDetail `gorm:"foreignKey:PersonID;constraint:OnDelete:RESTRICT" json:"juridical_detail,omitempty"`
}

func (Person) TableName() string {
	return "persons"
}

func (p *Person) IsDeleted() bool {
	return p.DeletedAt != nil
}

func (p *Person) BeforeDelete(tx *gorm.DB) error {
	return immutable("persons")
}

// NaturalDetail is write-once; FullName is derived in BeforeCreate.
type NaturalDetail struct {
	PersonID uint `gorm:"primaryKey;autoIncrement:false" json:"person_id"`
	NaturalIdentity
	CreatedAt time.Time `json:"created_at"`
}

func (NaturalDetail) TableName() string {
	return "natural_details"
}

func (d *NaturalDetail) BeforeCreate(tx *gorm.DB) error {
	d.deriveFullName()
	return nil
}

func (d *NaturalDetail) BeforeUpdate(tx *gorm.DB) error {
	return immutable("natural_details")
}

func (d *NaturalDetail) BeforeDelete(tx *gorm.DB) error {
	return immutable("natural_details")
}

type JuridicalDetail struct {
	PersonID uint `gorm:"primaryKey;autoIncrement:false" json:"person_id"`
	JuridicalIdentity
	CreatedAt time.Time `json:"created_at"`
}

func (JuridicalDetail) TableName() string {
	return "juridical_details"
}

func (d *JuridicalDetail) BeforeUpdate(tx *gorm.DB) error {
	return immutable("juridical_details")
}

func (d *JuridicalDetail) BeforeDelete(tx *gorm.DB) error {
	return immutable("juridical_details")
}
