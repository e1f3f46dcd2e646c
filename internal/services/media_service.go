package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"account-service/internal/storage"
	apperrors "account-service/pkg/errors"
	"account-service/pkg/logger"

	"go.uber.org/zap"
)

// FileUploader pushes a local file to the media host.
type FileUploader interface {
	UploadFile(ctx context.Context, localPath string) (storage.UploadResult, error)
}

// MediaService uploads staged request files and always removes the local copy
// afterwards, whether the upload worked or not.
type MediaService struct {
	uploader FileUploader
	logger   *logger.Logger
}

func NewMediaService(uploader FileUploader, l *logger.Logger) *MediaService {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &MediaService{uploader: uploader, logger: l}
}

// Upload returns apperrors.ErrNotUploaded for an empty path.
func (s *MediaService) Upload(ctx context.Context, localPath string) (storage.UploadResult, error) {
	if localPath == "" {
		return storage.UploadResult{}, apperrors.ErrNotUploaded
	}
	defer s.removeLocal(ctx, localPath)

	if s.uploader == nil {
		return storage.UploadResult{}, errors.New("media storage is not configured")
	}

	res, err := s.uploader.UploadFile(ctx, localPath)
	if err != nil {
		return storage.UploadResult{}, fmt.Errorf("upload media: %w", err)
	}
	if res.SecureURL == "" {
		return storage.UploadResult{}, fmt.Errorf("upload media: empty url for key %q", res.Key)
	}

	s.logger.InfoCtx(ctx, "media uploaded", zap.String("key", res.Key), zap.Int64("bytes", res.Bytes))
	return res, nil
}

func (s *MediaService) removeLocal(ctx context.Context, localPath string) {
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WarnCtx(ctx, "failed to remove staged file", zap.String("path", localPath), zap.Error(err))
	}
}
