package models

// ActivityType classifies an audit log entry.
type ActivityType string

const (
	ActivityUserRegistered          ActivityType = "user_registered"
	ActivityUserLogin               ActivityType = "user_login"
	ActivityUserUpdated             ActivityType = "user_updated"
	ActivityUserDeleted             ActivityType = "user_deleted"
	ActivityRoleChanged             ActivityType = "role_changed"
	ActivityRestaurantCreated       ActivityType = "restaurant_created"
	ActivityRestaurantUpdated       ActivityType = "restaurant_updated"
	ActivityRestaurantStatusChanged ActivityType = "restaurant_status_changed"
	ActivityMenuItemCreated         ActivityType = "menu_item_created"
	ActivityMenuItemUpdated         ActivityType = "menu_item_updated"
	ActivityMenuItemDeleted         ActivityType = "menu_item_deleted"
	ActivityReservationCreated      ActivityType = "reservation_created"
	ActivityReservationStatus       ActivityType = "reservation_status_changed"
	ActivityOrderCreated            ActivityType = "order_created"
	ActivityOrderStatus             ActivityType = "order_status_changed"
	ActivityReviewCreated           ActivityType = "review_created"
	ActivityNotificationSent        ActivityType = "notification_sent"
	ActivityDataSeeded              ActivityType = "data_seeded"
)

// ActivityLog is append-only.
type ActivityLog struct {
	Base
	UserID       *string      `gorm:"size:36;index" json:"userId"`
	ActivityType ActivityType `gorm:"size:64;not null;index" json:"activityType"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	EntityType   *string      `gorm:"size:64" json:"entityType"`
	EntityID     *string      `gorm:"size:36" json:"entityId"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// NotificationTypes are the accepted notification severities.
var NotificationTypes = []string{"info", "success", "warning", "error"}

// Notification targets one user, or everyone when UserID is nil.
type Notification struct {
	Base
	UserID  *string `gorm:"size:36;index" json:"userId"`
	Title   string  `gorm:"size:255;not null" json:"title"`
	Message string  `gorm:"type:text;not null" json:"message"`
	Type    string  `gorm:"size:16;not null;default:info" json:"type"`
	Read    bool    `gorm:"not null;default:false" json:"read"`
	Link    *string `gorm:"size:1024" json:"link"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// Ptr returns a pointer to v, for optional model fields.
func Ptr[T any](v T) *T { return &v }
