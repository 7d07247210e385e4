package usecase

import (
	"context"
	"io"
	"strings"

	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
	"foodshare/pkg/logger"
)

const (
	MaxPhotoSize    = 5 << 20
	listingPhotoDir = "listings"
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type PhotoUseCase struct {
	storage     PhotoStorage
	profileRepo repository.ProfileRepository
}

func NewPhotoUseCase(storage PhotoStorage, profileRepo repository.ProfileRepository) *PhotoUseCase {
	return &PhotoUseCase{
		storage:     storage,
		profileRepo: profileRepo,
	}
}

// UploadListingPhoto stores a donor's listing photo and returns a URL usable as photo_ref.
func (uc *PhotoUseCase) UploadListingPhoto(ctx context.Context, identityID string, file io.Reader, contentType string, size int64) (string, error) {
	if identityID == "" {
		return "", errors.Unauthorized("Not authenticated", nil)
	}

	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return "", err
	}
	if !profile.IsDonor() {
		return "", errors.Forbidden("Only donors can upload listing photos", nil)
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !allowedPhotoTypes[contentType] {
		return "", errors.BadRequest("photo must be a JPEG, PNG, WebP or GIF image", nil)
	}
	if size > MaxPhotoSize {
		return "", errors.BadRequest("photo must be at most 5MB", nil)
	}

	if uc.storage == nil {
		return "", errors.Internal("Photo storage is not configured", nil)
	}

	url, err := uc.storage.UploadFile(ctx, file, contentType, listingPhotoDir+"/"+profile.ID, true)
	if err != nil {
		logger.Error("Failed to upload listing photo for %s: %v", profile.ID, err)
		return "", errors.Internal("Failed to upload photo", err)
	}

	return url, nil
}
