package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitetable/elitetable/pkg/storage"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "restaurants/a.jpg", strings.NewReader("jpeg"), "image/jpeg"))
	assert.True(t, disk.Exists(ctx, "restaurants/a.jpg"))
	assert.Equal(t, "http://localhost:8080/storage/restaurants/a.jpg", disk.URL("restaurants/a.jpg"))

	rc, err := disk.Get(ctx, "restaurants/a.jpg")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg", string(body))

	require.NoError(t, disk.Delete(ctx, "restaurants/a.jpg"))
	require.NoError(t, disk.Delete(ctx, "restaurants/a.jpg"))
	assert.False(t, disk.Exists(ctx, "restaurants/a.jpg"))
}

func TestLocalConfinesPathsToRoot(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "/storage")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "../../escape.txt", strings.NewReader("x"), ""))
	assert.True(t, disk.Exists(ctx, "escape.txt"))

	assert.ErrorIs(t, disk.Put(ctx, "", strings.NewReader("x"), ""), storage.ErrInvalidPath)
}

func TestS3RequiresBucket(t *testing.T) {
	_, err := storage.NewS3(context.Background(), storage.S3Options{})
	assert.Error(t, err)
}
