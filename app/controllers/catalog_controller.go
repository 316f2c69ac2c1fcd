package controllers

import (
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/pkg/ctx"
)

type CatalogController struct {
	service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

func (h *CatalogController) Governorates(c *ctx.Context) {
	out, err := h.service.Governorates(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *CatalogController) Districts(c *ctx.Context) {
	out, err := h.service.Districts(c.Context(), c.Query("governorateId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *CatalogController) Restaurants(c *ctx.Context) {
	out, err := h.service.Restaurants(c.Context(), repositories.RestaurantFilter{
		GovernorateID: c.Query("governorateId"),
		DistrictID:    c.Query("districtId"),
		Cuisine:       c.Query("cuisine"),
		Search:        c.Query("search"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *CatalogController) Restaurant(c *ctx.Context) {
	r, err := h.service.Restaurant(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(r)
}

func (h *CatalogController) OwnedRestaurants(c *ctx.Context) {
	out, err := h.service.OwnedRestaurants(c.Context(), c.Principal())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *CatalogController) CreateRestaurant(c *ctx.Context) {
	var in requests.RestaurantInput
	if !c.BindJSON(&in) {
		return
	}
	r, err := h.service.CreateRestaurant(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(r)
}

func (h *CatalogController) UpdateRestaurant(c *ctx.Context) {
	var in requests.RestaurantPatch
	if !c.BindJSON(&in) {
		return
	}
	r, err := h.service.UpdateRestaurant(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(r)
}

func (h *CatalogController) Menu(c *ctx.Context) {
	out, err := h.service.Menu(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *CatalogController) CreateMenuItem(c *ctx.Context) {
	var in requests.MenuItemInput
	if !c.BindJSON(&in) {
		return
	}
	m, err := h.service.CreateMenuItem(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(m)
}

func (h *CatalogController) UpdateMenuItem(c *ctx.Context) {
	var in requests.MenuItemPatch
	if !c.BindJSON(&in) {
		return
	}
	m, err := h.service.UpdateMenuItem(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(m)
}

func (h *CatalogController) DeleteMenuItem(c *ctx.Context) {
	if err := h.service.DeleteMenuItem(c.Context(), c.Principal(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}

func (h *CatalogController) Reviews(c *ctx.Context) {
	out, err := h.service.Reviews(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *CatalogController) CreateReview(c *ctx.Context) {
	var in requests.ReviewInput
	if !c.BindJSON(&in) {
		return
	}
	rv, err := h.service.CreateReview(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(rv)
}
