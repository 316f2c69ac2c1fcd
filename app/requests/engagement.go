package requests

type FavoriteInput struct {
	RestaurantID string `json:"restaurantId" validate:"required,uuid"`
}

type ReviewInput struct {
	Rating  int     `json:"rating"  validate:"required,between=1 5"`
	Comment *string `json:"comment" validate:"nullable,max=2000"`
}

type NotificationInput struct {
	UserID  *string `json:"userId"  validate:"nullable,uuid"`
	Title   string  `json:"title"   validate:"required,max=255"`
	Message string  `json:"message" validate:"required"`
	Type    string  `json:"type"    validate:"required,in=info success warning error"`
	Link    *string `json:"link"    validate:"nullable,max=1024"`
}
