package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/database/seeders"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/cache"
	"github.com/elitetable/elitetable/pkg/event"
	"github.com/elitetable/elitetable/pkg/logger"
)

// SeedOptions gates the fixture loader.
type SeedOptions struct {
	Production bool
	Token      string // required in X-Seed-Token when set
}

// SeedService reloads the demo fixtures over HTTP.
type SeedService struct {
	db     *gorm.DB
	events *event.Bus
	opts   SeedOptions
}

func NewSeedService(db *gorm.DB, events *event.Bus, opts SeedOptions) *SeedService {
	return &SeedService{db: db, events: events, opts: opts}
}

// SeedResult is returned by Run.
type SeedResult struct {
	Message string         `json:"message"`
	Counts  map[string]int `json:"counts"`
}

// Run upserts every fixture table. token is the caller's X-Seed-Token.
func (s *SeedService) Run(ctx context.Context, token string) (*SeedResult, error) {
	if s.opts.Production {
		return nil, apperr.Forbidden("Seeding is disabled in production")
	}
	if s.opts.Token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.Token)) != 1 {
		return nil, apperr.Forbidden("Invalid seed token")
	}

	counts, err := seeders.RunAll(ctx, s.db, io.Discard)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := cache.Forget(ctx, GovernoratesCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("seed: forget governorates cache", "error", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	record(ctx, s.events, Activity{
		Type:        models.ActivityDataSeeded,
		Description: fmt.Sprintf("Seeded %d fixture rows", total),
	})
	logger.WithCtx(ctx).Info("seed: fixtures loaded", "rows", total)
	return &SeedResult{Message: "Database seeded successfully", Counts: counts}, nil
}
