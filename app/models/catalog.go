package models

// RestaurantStatus is the moderation state of a restaurant.
type RestaurantStatus string

const (
	RestaurantPending   RestaurantStatus = "pending"
	RestaurantActive    RestaurantStatus = "active"
	RestaurantSuspended RestaurantStatus = "suspended"
)

// PriceRanges are the accepted restaurant price bands.
var PriceRanges = []string{"$", "$$", "$$$", "$$$$"}

type Governorate struct {
	Base
	Name   string  `gorm:"uniqueIndex;size:255;not null" json:"name"`
	NameAr *string `gorm:"size:255" json:"nameAr"`
}

type District struct {
	Base
	GovernorateID string  `gorm:"size:36;not null;uniqueIndex:idx_districts_governorate_name" json:"governorateId"`
	Name          string  `gorm:"size:255;not null;uniqueIndex:idx_districts_governorate_name" json:"name"`
	NameAr        *string `gorm:"size:255" json:"nameAr"`

	Governorate *Governorate `gorm:"foreignKey:GovernorateID" json:"-"`
}

type Restaurant struct {
	Mutable
	OwnerID       string           `gorm:"size:36;not null;index" json:"ownerId"`
	Name          string           `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description   string           `gorm:"type:text;not null" json:"description"`
	Cuisine       string           `gorm:"size:100;not null;index" json:"cuisine"`
	Address       string           `gorm:"size:500;not null" json:"address"`
	Phone         *string          `gorm:"size:50" json:"phone"`
	Image         *string          `gorm:"size:1024" json:"image"`
	GovernorateID *string          `gorm:"size:36;index" json:"governorateId"`
	DistrictID    *string          `gorm:"size:36;index" json:"districtId"`
	PriceRange    string           `gorm:"size:4;not null" json:"priceRange"`
	Rating        float64          `gorm:"type:decimal(3,2);not null;default:4.5" json:"rating"`
	Status        RestaurantStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	OpeningHours  *string          `gorm:"size:255" json:"openingHours"`

	Owner       *User        `gorm:"foreignKey:OwnerID" json:"-"`
	Governorate *Governorate `gorm:"foreignKey:GovernorateID" json:"-"`
	District    *District    `gorm:"foreignKey:DistrictID" json:"-"`
}

// DefaultRating is assigned to new restaurants before any review.
const DefaultRating = 4.5

type MenuItem struct {
	Mutable
	RestaurantID string  `gorm:"size:36;not null;uniqueIndex:idx_menu_items_restaurant_name" json:"restaurantId"`
	Name         string  `gorm:"size:255;not null;uniqueIndex:idx_menu_items_restaurant_name" json:"name"`
	Description  string  `gorm:"type:text" json:"description"`
	Price        float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Category     string  `gorm:"size:100;not null" json:"category"`
	Image        *string `gorm:"size:1024" json:"image"`
	Available    bool    `gorm:"not null" json:"available"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
}
