package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"recoverly/physio-app/internal/storage"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrInvalidContentType = errors.New("invalid or missing video content type")
	ErrUploadURLError     = errors.New("failed to generate upload URL")
	ErrDownloadURLError   = errors.New("failed to generate download URL")
	ErrNotKeyOwner        = errors.New("object key does not belong to this user")
)

// UploadURLResponse carries a presigned URL and the object key the client
// must reference afterwards.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// MediaService hands out presigned URLs for exercise demonstration videos.
// Files go directly between the client and the storage provider.
type MediaService interface {
	RequestDemoUploadURL(ctx context.Context, ownerUID, contentType string) (*UploadURLResponse, error)
	DemoDownloadURL(ctx context.Context, objectKey string) (string, error)
	// DeleteDemo removes a stored video. Only keys under the owner's prefix
	// may be deleted.
	DeleteDemo(ctx context.Context, ownerUID, objectKey string) error
}

// mediaService implements the MediaService interface.
type mediaService struct {
	fileStorage storage.FileStorage
}

// NewMediaService creates a new instance of mediaService.
func NewMediaService(fileStorage storage.FileStorage) MediaService {
	return &mediaService{fileStorage: fileStorage}
}

// RequestDemoUploadURL generates a pre-signed PUT URL under a fresh object key.
func (s *mediaService) RequestDemoUploadURL(ctx context.Context, ownerUID, contentType string) (*UploadURLResponse, error) {
	if ownerUID == "" {
		return nil, errors.New("owner uid is required")
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, ErrInvalidContentType
	}

	fileExtension := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("videos", ownerUID, fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// DeleteDemo removes a stored demo video after checking the key belongs to
// the caller.
func (s *mediaService) DeleteDemo(ctx context.Context, ownerUID, objectKey string) error {
	if objectKey == "" {
		return errors.New("object key is required")
	}
	if !strings.HasPrefix(objectKey, path.Join("videos", ownerUID)+"/") {
		return ErrNotKeyOwner
	}
	return s.fileStorage.DeleteObject(ctx, objectKey)
}

// DemoDownloadURL generates a pre-signed GET URL for a stored video.
func (s *mediaService) DemoDownloadURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", errors.New("object key is required")
	}
	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}
