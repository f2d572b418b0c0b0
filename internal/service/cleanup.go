package service

import (
	"context"
	"log/slog"
)

// ImageCleaner removes stored images by URL after the records that referenced
// them are gone.
type ImageCleaner interface {
	DeleteImages(ctx context.Context, urls []string) error
}

// cleanupImages hands urls to cleaner and logs a failure. The delete that
// produced the URLs has already committed, so an error here is not returned.
func cleanupImages(ctx context.Context, cleaner ImageCleaner, logger *slog.Logger, urls []string) {
	if cleaner == nil || len(urls) == 0 {
		return
	}
	if err := cleaner.DeleteImages(ctx, urls); err != nil {
		logger.WarnContext(ctx, "image cleanup failed", "count", len(urls), "error", err)
	}
}
