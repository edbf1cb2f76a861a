package models

import (
	"strings"
	"time"
)

// Menu tiers encoded as service id prefixes
const (
	MenuStandard = "STD"
	MenuVIP      = "VIP"
)

// MaxPrice caps a unit price in either currency
const MaxPrice int64 = 1_000_000_000_000

type Service struct {
	ID             string        `gorm:"type:varchar(32);primary_key" json:"id"`
	CategoryID     string        `gorm:"type:varchar(32);index" json:"categoryId"`
	ServiceGroupID string        `gorm:"type:varchar(32);index" json:"serviceGroupId,omitempty"`
	Name           LocalizedText `gorm:"type:jsonb;not null" json:"name"`
	Description    LocalizedText `gorm:"type:jsonb" json:"description"`
	PriceVND       int64         `gorm:"not null" json:"priceVND"`
	PriceUSD       int64         `gorm:"not null" json:"priceUSD"`
	Duration       int           `json:"duration"` // in minutes
	Image          string        `json:"image,omitempty"`
	IsActive       bool          `gorm:"not null" json:"active"`
	IsBestSeller   bool          `gorm:"default:false" json:"bestSeller"`
	IsBestChoice   bool          `gorm:"default:false" json:"bestChoice"`
	ShowStrength   bool          `gorm:"default:false" json:"showStrength"`
	Areas          AreaFlags     `gorm:"type:jsonb" json:"areas,omitempty"`
	Tags           TagList       `gorm:"type:jsonb" json:"tags,omitempty"`
	Hint           LocalizedText `gorm:"type:jsonb" json:"hint,omitempty"`
	SortOrder      int           `gorm:"default:0" json:"sortOrder"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// MenuType derives the menu tier from the id prefix
func (s Service) MenuType() string {
	if i := strings.Index(s.ID, "-"); i > 0 {
		return strings.ToUpper(s.ID[:i])
	}
	return MenuStandard
}

// GroupKey is the key used to merge duration variants into one card
func (s Service) GroupKey() string {
	if s.ServiceGroupID != "" {
		return s.ServiceGroupID
	}
	return s.ID
}

type Category struct {
	ID        string        `gorm:"type:varchar(32);primary_key" json:"id"`
	Name      LocalizedText `gorm:"type:jsonb;not null" json:"name"`
	Image     string        `json:"image,omitempty"`
	SortOrder int           `gorm:"default:0" json:"sortOrder"`
}
