package model

import "time"

// ConfigMaxStringDistance is the edit distance ceiling read by every screening run.
const ConfigMaxStringDistance = "max_string_distance_to_match"

type ConfigEntry struct {
	Name      string    `gorm:"primaryKey;type:varchar(100)" json:"name"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ConfigEntry) TableName() string {
	return "config_entries"
}
