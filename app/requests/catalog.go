package requests

type RestaurantInput struct {
	Name          string  `json:"name"          validate:"required,max=255"`
	Description   string  `json:"description"   validate:"required"`
	Cuisine       string  `json:"cuisine"       validate:"required,max=100"`
	Address       string  `json:"address"       validate:"required,max=500"`
	Phone         *string `json:"phone"         validate:"nullable,max=50"`
	Image         *string `json:"image"         validate:"nullable,max=1024"`
	GovernorateID *string `json:"governorateId" validate:"nullable,uuid"`
	DistrictID    *string `json:"districtId"    validate:"nullable,uuid"`
	PriceRange    string  `json:"priceRange"    validate:"required,in=$ $$ $$$ $$$$"`
	OpeningHours  *string `json:"openingHours"  validate:"nullable,max=255"`
}

type RestaurantPatch struct {
	Name          *string `json:"name"          validate:"nullable,min=1,max=255"`
	Description   *string `json:"description"   validate:"nullable,min=1"`
	Cuisine       *string `json:"cuisine"       validate:"nullable,min=1,max=100"`
	Address       *string `json:"address"       validate:"nullable,min=1,max=500"`
	Phone         *string `json:"phone"         validate:"nullable,max=50"`
	Image         *string `json:"image"         validate:"nullable,max=1024"`
	GovernorateID *string `json:"governorateId" validate:"nullable,uuid"`
	DistrictID    *string `json:"districtId"    validate:"nullable,uuid"`
	PriceRange    *string `json:"priceRange"    validate:"nullable,in=$ $$ $$$ $$$$"`
	OpeningHours  *string `json:"openingHours"  validate:"nullable,max=255"`
}

type RestaurantStatusInput struct {
	Status string `json:"status" validate:"required,in=pending active suspended"`
}

type MenuItemInput struct {
	RestaurantID string  `json:"restaurantId" validate:"required,uuid"`
	Name         string  `json:"name"         validate:"required,max=255"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"        validate:"required,gt=0"`
	Category     string  `json:"category"     validate:"required,max=100"`
	Image        *string `json:"image"        validate:"nullable,max=1024"`
	Available    *bool   `json:"available"`
}

type MenuItemPatch struct {
	Name        *string  `json:"name"        validate:"nullable,min=1,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"       validate:"nullable,gt=0"`
	Category    *string  `json:"category"    validate:"nullable,min=1,max=100"`
	Image       *string  `json:"image"       validate:"nullable,max=1024"`
	Available   *bool    `json:"available"`
}
