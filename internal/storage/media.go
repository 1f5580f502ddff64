package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"grapher_backend/internal/logger"
	"grapher_backend/pkg/apperrors"
)

const (
	profilePicturesPrefix = "profile-pictures"
	portfoliosPrefix      = "portfolios"
	thumbnailSuffix       = "_thumb"
)

// UploadedObject is what the media store hands back after an upload.
type UploadedObject struct {
	ObjectID string `json:"objectId"`
	URL      string `json:"url"`
}

// MediaStore is the media-facing view of a Storage backend: it speaks the
// apperrors taxonomy and tolerates deletes of missing objects.
type MediaStore struct {
	backend Storage
}

func NewMediaStore(backend Storage) *MediaStore {
	return &MediaStore{backend: backend}
}

func (m *MediaStore) Upload(ctx context.Context, path string, data []byte, contentType string) (*UploadedObject, error) {
	if err := m.backend.Save(ctx, path, bytes.NewReader(data), contentType); err != nil {
		return nil, apperrors.UploadError(err)
	}
	url, err := m.backend.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.UploadError(err)
	}
	return &UploadedObject{ObjectID: path, URL: url}, nil
}

// Delete treats a missing object as already deleted.
func (m *MediaStore) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := m.backend.Delete(ctx, path); err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil
		}
		return apperrors.DeleteError(err)
	}
	return nil
}

// DeletePrefix removes every object under prefix. It keeps going past
// individual failures and returns the first one.
func (m *MediaStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := m.backend.List(ctx, prefix)
	if err != nil {
		return 0, apperrors.DeleteError(err)
	}

	var firstErr error
	deleted := 0
	for _, key := range keys {
		if err := m.Delete(ctx, key); err != nil {
			logger.CtxWithError(ctx, "failed to delete media object", err, "key", key)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	return deleted, firstErr
}

// ============================================
// Object paths
// ============================================

// NewImageID returns {uid}_{unixMillis}_{random base36}.
func NewImageID(uid string) string {
	suffix := strconv.FormatUint(rand.Uint64()|1<<63, 36)
	return fmt.Sprintf("%s_%d_%s", uid, time.Now().UnixMilli(), suffix[len(suffix)-8:])
}

func ProfilePicturePath(uid, imageID string) string {
	return fmt.Sprintf("%s/%s/%s", profilePicturesPrefix, uid, imageID)
}

func CoverImagePath(uid, imageID string) string {
	return fmt.Sprintf("%s/%s/cover/%s", profilePicturesPrefix, uid, imageID)
}

func PortfolioPath(uid, fileID string) string {
	return fmt.Sprintf("%s/%s/%s", portfoliosPrefix, uid, fileID)
}

// ThumbnailPath derives the thumbnail key from the full-size key.
func ThumbnailPath(objectPath string) string {
	return objectPath + thumbnailSuffix
}

// UserPrefixes lists every prefix that holds objects owned by uid.
func UserPrefixes(uid string) []string {
	return []string{
		fmt.Sprintf("%s/%s/", profilePicturesPrefix, uid),
		fmt.Sprintf("%s/%s/", portfoliosPrefix, uid),
	}
}

// IsOwnedBy reports whether an object path belongs to uid.
func IsOwnedBy(objectPath, uid string) bool {
	for _, prefix := range UserPrefixes(uid) {
		if strings.HasPrefix(objectPath, prefix) {
			return true
		}
	}
	return false
}
