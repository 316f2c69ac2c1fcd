package controllers

import (
	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/pkg/ctx"
)

type SeedController struct {
	service *services.SeedService
}

func NewSeedController(service *services.SeedService) *SeedController {
	return &SeedController{service: service}
}

func (h *SeedController) Seed(c *ctx.Context) {
	res, err := h.service.Run(c.Context(), c.Header("X-Seed-Token"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}
