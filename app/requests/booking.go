package requests

type ReservationInput struct {
	RestaurantID    string  `json:"restaurantId"    validate:"required,uuid"`
	Date            string  `json:"date"            validate:"required,date"`
	Time            string  `json:"time"            validate:"required,clock"`
	PartySize       int     `json:"partySize"       validate:"required,between=1 50"`
	SpecialRequests *string `json:"specialRequests" validate:"nullable,max=1000"`
}

// ReservationPatch has no confirmationCode: the code never changes.
type ReservationPatch struct {
	Status          *string `json:"status"          validate:"nullable,in=pending confirmed cancelled completed"`
	Date            *string `json:"date"            validate:"nullable,date"`
	Time            *string `json:"time"            validate:"nullable,clock"`
	PartySize       *int    `json:"partySize"       validate:"nullable,between=1 50"`
	SpecialRequests *string `json:"specialRequests" validate:"nullable,max=1000"`
}

type OrderLine struct {
	MenuItemID string `json:"menuItemId" validate:"required,uuid"`
	Quantity   int    `json:"quantity"   validate:"required,between=1 99"`
}

type OrderInput struct {
	RestaurantID  string      `json:"restaurantId"  validate:"required,uuid"`
	ReservationID *string     `json:"reservationId" validate:"nullable,uuid"`
	CustomerName  *string     `json:"customerName"  validate:"nullable,max=255"`
	Notes         *string     `json:"notes"         validate:"nullable,max=1000"`
	Items         []OrderLine `json:"items"         validate:"required,min=1,max=50,dive"`
}

type OrderPatch struct {
	Status string `json:"status" validate:"required,in=pending preparing ready served cancelled"`
}
