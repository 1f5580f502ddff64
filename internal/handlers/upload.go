package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"grapher_backend/internal/imageprocessor"
	"grapher_backend/internal/models"
	"grapher_backend/internal/wizard"
	"grapher_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// readUpload pulls the multipart "file" and the optional crop_* fields.
// It reads one byte past the limit so the size rule can reject it.
func readUpload(c *gin.Context) (wizard.Upload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return wizard.Upload{}, apperrors.NewBadRequestError("no file provided")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return wizard.Upload{}, apperrors.NewBadRequestError("failed to read file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, models.MaxUploadBytes+1))
	if err != nil {
		return wizard.Upload{}, apperrors.NewBadRequestError("failed to read file")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
		if i := strings.IndexByte(mimeType, ';'); i >= 0 {
			mimeType = mimeType[:i]
		}
	}

	var sel imageprocessor.Selection
	if err := c.ShouldBind(&sel); err != nil {
		return wizard.Upload{}, apperrors.NewBadRequestError("invalid crop selection: " + err.Error())
	}
	up := wizard.Upload{Data: data, MimeType: mimeType}
	if hasCropFields(c) {
		if sel.Width <= 0 || sel.Height <= 0 {
			return wizard.Upload{}, apperrors.InvalidCropError(errors.New("crop_width and crop_height must both be positive"))
		}
		up.Selection = &sel
	}
	return up, nil
}

// hasCropFields reports whether the form names any crop_* field. With none
// the preset's initial crop applies.
func hasCropFields(c *gin.Context) bool {
	for _, key := range []string{"crop_x", "crop_y", "crop_width", "crop_height"} {
		if _, ok := c.GetPostForm(key); ok {
			return true
		}
	}
	return false
}
