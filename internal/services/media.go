package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/storage"

	"github.com/google/uuid"
)

const MaxPhotoBytes = 5 << 20

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoKey builds the storage key for a child photo.
func PhotoKey(childID, contentType string) (string, error) {
	ext, ok := photoExtensions[contentType]
	if !ok {
		return "", ErrBadRequest("Only JPEG, PNG, GIF or WebP images are accepted")
	}
	return fmt.Sprintf("children/%s/%s%s", childID, uuid.NewString(), ext), nil
}

// savePhoto sniffs the body, rejects empty or oversized files and uploads it.
// The declared content type of the upload is ignored.
func savePhoto(ctx context.Context, driver storage.Driver, childID string, body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxPhotoBytes+1))
	if err != nil {
		return "", WrapError(err, "read upload")
	}
	if len(data) == 0 {
		return "", ErrBadRequest("The file is empty")
	}
	if len(data) > MaxPhotoBytes {
		return "", ErrBadRequest("The file is larger than 5 MB")
	}
	contentType := http.DetectContentType(data)
	key, err := PhotoKey(childID, contentType)
	if err != nil {
		return "", err
	}
	url, err := driver.Upload(ctx, bytes.NewReader(data), key, contentType)
	if err != nil {
		return "", WrapError(err, "upload photo")
	}
	return url, nil
}

// UploadEventPhoto stores a photo that a later CreateEvent call references.
func UploadEventPhoto(ctx context.Context, q db.Querier, driver storage.Driver, userID, childID string, body io.Reader) (string, error) {
	if _, _, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanWriteEvents); err != nil {
		return "", err
	}
	return savePhoto(ctx, driver, childID, body)
}

// SetChildPhoto uploads a new profile photo and points the child at it.
func SetChildPhoto(ctx context.Context, q db.Querier, driver storage.Driver, userID, childID string, body io.Reader) (models.Child, error) {
	if _, _, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanEditChild); err != nil {
		return models.Child{}, err
	}
	url, err := savePhoto(ctx, driver, childID, body)
	if err != nil {
		return models.Child{}, err
	}
	return UpdateChild(ctx, q, userID, childID, ChildUpdate{Photo: &url})
}
