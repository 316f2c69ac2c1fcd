package models

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// OrderStatus is the serving-pipeline state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderCancelled OrderStatus = "cancelled"
)

// Reservation is a table booking. ConfirmationCode is set once on create.
type Reservation struct {
	Mutable
	UserID           string            `gorm:"size:36;not null;index" json:"userId"`
	RestaurantID     string            `gorm:"size:36;not null;index" json:"restaurantId"`
	Date             string            `gorm:"size:10;not null" json:"date"`
	Time             string            `gorm:"size:5;not null" json:"time"`
	PartySize        int               `gorm:"not null" json:"partySize"`
	SpecialRequests  *string           `gorm:"type:text" json:"specialRequests"`
	Status           ReservationStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	ConfirmationCode string            `gorm:"uniqueIndex;size:16;not null" json:"confirmationCode"`

	User       *User       `gorm:"foreignKey:UserID" json:"-"`
	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
}

type Order struct {
	Mutable
	RestaurantID  string      `gorm:"size:36;not null;index" json:"restaurantId"`
	UserID        *string     `gorm:"size:36;index" json:"userId"`
	ReservationID *string     `gorm:"size:36;index" json:"reservationId"`
	CustomerName  string      `gorm:"size:255;not null" json:"customerName"`
	Status        OrderStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	Total         float64     `gorm:"type:decimal(10,2);not null" json:"total"`
	Notes         *string     `gorm:"type:text" json:"notes"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	Restaurant  *Restaurant  `gorm:"foreignKey:RestaurantID" json:"-"`
	User        *User        `gorm:"foreignKey:UserID" json:"-"`
	Reservation *Reservation `gorm:"foreignKey:ReservationID" json:"-"`
}

// OrderItem snapshots the menu item's name and price at checkout.
type OrderItem struct {
	Base
	OrderID    string  `gorm:"size:36;not null;index" json:"orderId"`
	MenuItemID string  `gorm:"size:36;not null;index" json:"menuItemId"`
	Name       string  `gorm:"size:255;not null" json:"name"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	Price      float64 `gorm:"type:decimal(10,2);not null" json:"price"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"-"`
}
