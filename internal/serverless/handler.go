// Package serverless exposes the API as a single http.HandlerFunc for
// function platforms. The kernel is built on the first invocation and
// reused by every later one on the same instance.
package serverless

import (
	"context"
	"net/http"
	"sync"

	"github.com/elitetable/elitetable/config"
	"github.com/elitetable/elitetable/internal/kernel"
	"github.com/elitetable/elitetable/pkg/cache"
	"github.com/elitetable/elitetable/pkg/database"
	"github.com/elitetable/elitetable/pkg/logger"
	"github.com/elitetable/elitetable/pkg/response"
	"github.com/elitetable/elitetable/pkg/storage"
)

var (
	once    sync.Once
	handler http.Handler
	bootErr error
)

func boot() {
	if err := config.Load(); err != nil {
		bootErr = err
		return
	}
	logger.Setup()

	// A missing database still yields a kernel; its /api routes answer 500.
	if err := database.Connect(); err != nil {
		logger.Error("serverless: database unavailable", "error", err)
	}
	if err := cache.Connect(context.Background()); err != nil {
		logger.Warn("serverless: cache falling back to memory", "error", err)
	}
	disk, err := storage.FromConfig(context.Background())
	if err != nil {
		logger.Warn("serverless: storage disabled", "error", err)
		disk = nil
	}

	opts := kernel.FromConfig(database.DB, disk, nil)
	// Instances freeze between invocations; run listeners inline.
	opts.AsyncEvents = false
	k, err := kernel.New(opts)
	if err != nil {
		bootErr = err
		return
	}
	handler = k.Handler()
}

// Handler is the function entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(boot)
	if bootErr != nil {
		logger.Error("serverless: boot failed", "error", bootErr)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	handler.ServeHTTP(w, r)
}
