package models

type Favorite struct {
	Base
	UserID       string `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_restaurant" json:"userId"`
	RestaurantID string `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_restaurant" json:"restaurantId"`

	User       *User       `gorm:"foreignKey:UserID" json:"-"`
	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
}

// Review is immutable once written.
type Review struct {
	Base
	UserID       string  `gorm:"size:36;not null;index" json:"userId"`
	RestaurantID string  `gorm:"size:36;not null;index" json:"restaurantId"`
	Rating       int     `gorm:"not null" json:"rating"`
	Comment      *string `gorm:"type:text" json:"comment"`

	User       *User       `gorm:"foreignKey:UserID" json:"-"`
	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
}
