package controllers

import (
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/ctx"
	"github.com/elitetable/elitetable/pkg/logger"
	"github.com/elitetable/elitetable/pkg/storage"
)

// MaxUploadBytes caps a single image upload.
const MaxUploadBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadController struct {
	disk storage.Disk
}

func NewUploadController(disk storage.Disk) *UploadController {
	return &UploadController{disk: disk}
}

// Image stores the multipart "file" field under restaurants/ with a random
// name and returns its path and public URL.
func (h *UploadController) Image(c *ctx.Context) {
	if h.disk == nil {
		c.Error(http.StatusServiceUnavailable, "File storage unavailable")
		return
	}
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, MaxUploadBytes+1<<10)
	if err := c.R.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.Fail(apperr.Validation(map[string]string{"file": "File must be 5 MB or smaller"}))
			return
		}
		c.Fail(apperr.Invalid("Expected a multipart form with a file field"))
		return
	}
	defer c.R.MultipartForm.RemoveAll()

	file, header, err := c.R.FormFile("file")
	if err != nil {
		c.Fail(apperr.Validation(map[string]string{"file": "File is required"}))
		return
	}
	defer file.Close()

	if header.Size > MaxUploadBytes {
		c.Fail(apperr.Validation(map[string]string{"file": "File must be 5 MB or smaller"}))
		return
	}

	// Sniff rather than trust the client's Content-Type.
	head := make([]byte, 512)
	n, _ := file.Read(head)
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		c.Fail(apperr.Validation(map[string]string{"file": "Only JPEG, PNG, WebP and GIF images are allowed"}))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.Fail(apperr.Internal(err))
		return
	}

	key := path.Join("restaurants", uuid.NewString()+ext)
	if err := h.disk.Put(c.Context(), key, file, contentType); err != nil {
		c.Fail(apperr.Internal(err))
		return
	}
	logger.WithCtx(c.Context()).Info("upload: stored", "path", key, "disk", h.disk.Driver(), "bytes", header.Size, "ip", c.ClientIP())
	c.Created(map[string]string{"path": key, "url": h.disk.URL(key)})
}
