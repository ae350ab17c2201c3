// Package resume accepts resume uploads, extracts their text and scores them.
package resume

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"os"
	"time"

	"placement/internal/apperr"
	"placement/internal/logger"
	"placement/internal/metrics"
	"placement/internal/portal"
)

// Recorder persists a reviewed resume.
type Recorder interface {
	Save(ctx context.Context, rec portal.ResumeRecord) (int64, error)
}

// Intake validates, stores, analyzes and records uploads.
type Intake struct {
	dir      string
	analyzer Analyzer
	records  Recorder
	now      func() time.Time
}

func NewIntake(dir string, records Recorder) *Intake {
	return &Intake{dir: dir, records: records, now: time.Now}
}

// Review handles one upload. userID 0 records an anonymous review.
// The extension is checked before anything touches disk or database, and the stored
// file is removed again when the record cannot be saved.
func (in *Intake) Review(ctx context.Context, userID int64, fh *multipart.FileHeader) (Result, error) {
	if fh == nil || fh.Filename == "" {
		return Result{}, apperr.New(apperr.CodeValidation, "No file selected")
	}
	name := SanitizeFilename(fh.Filename)
	if !AllowedExtension(name) {
		return Result{}, apperr.New(apperr.CodeValidation, "File type not allowed")
	}

	path, err := SaveUpload(fh, in.dir, StoredName(name, in.now().UTC()))
	if err != nil {
		return Result{}, apperr.Wrap(apperr.CodeInternal, "store resume", err)
	}

	res := in.analyzer.Analyze(ctx, path)
	details, err := json.Marshal(res)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.CodeInternal, "encode review", err)
	}
	if _, err := in.records.Save(ctx, portal.ResumeRecord{
		UserID:      userID,
		Filename:    name,
		StoragePath: path,
		Verdict:     res.Verdict,
		Details:     string(details),
	}); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logger.From(ctx).Warn("remove unrecorded resume", "path", path, "err", rmErr)
		}
		return Result{}, err
	}

	metrics.ResumeReviews.WithLabelValues(res.Verdict).Inc()
	logger.From(ctx).Info("resume reviewed", "user_id", userID, "verdict", res.Verdict, "score", res.Score)
	return res, nil
}

// DecodeDetails parses a stored review, tolerating rows written by older versions.
func DecodeDetails(raw string) Result {
	var r Result
	_ = json.Unmarshal([]byte(raw), &r)
	return r
}
