package service

import (
	"go.uber.org/zap"

	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/imaging"
)

type photoStorage interface {
	Save(prefix, ext string, data []byte) (string, error)
	Delete(name string) error
}

// PhotoUploader runs the shared evidence pipeline: normalize every photo,
// store the batch, and roll the batch back on any failure. A partial batch is
// never surfaced; callers either get every URL or none.
type PhotoUploader struct {
	processor *imaging.Processor
	storage   photoStorage
	logger    *zap.Logger
	maxBatch  int
}

// NewPhotoUploader constructs the uploader.
func NewPhotoUploader(processor *imaging.Processor, storage photoStorage, logger *zap.Logger, maxBatch int) *PhotoUploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBatch <= 0 {
		maxBatch = 5
	}
	return &PhotoUploader{processor: processor, storage: storage, logger: logger, maxBatch: maxBatch}
}

// UploadBatch normalizes and stores the photos under prefix. On any failure
// the already-stored files of this attempt are deleted before returning.
func (u *PhotoUploader) UploadBatch(prefix string, photos [][]byte) ([]string, error) {
	if len(photos) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one photo is required")
	}
	if len(photos) > u.maxBatch {
		return nil, appErrors.Clone(appErrors.ErrValidation, "too many photos in one batch")
	}

	stored := make([]string, 0, len(photos))
	rollback := func() {
		for _, name := range stored {
			if err := u.storage.Delete(name); err != nil {
				u.logger.Warn("failed to roll back stored photo", zap.String("name", name), zap.Error(err))
			}
		}
	}

	for i, raw := range photos {
		normalized, err := u.processor.Normalize(raw)
		if err != nil {
			rollback()
			return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "photo could not be processed")
		}
		name, err := u.storage.Save(prefix, "jpg", normalized)
		if err != nil {
			rollback()
			u.logger.Error("photo batch store failed",
				zap.String("prefix", prefix),
				zap.Int("index", i),
				zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "photo could not be stored")
		}
		stored = append(stored, name)
	}
	return stored, nil
}
