package web

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"placement/internal/apperr"
	"placement/internal/cloudinary"
	"placement/internal/logger"
	"placement/internal/resume"
)

var imageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// AvatarStore keeps profile pictures and returns the value stored on users.profile_pic:
// a bare filename for local files, an absolute URL for hosted ones.
type AvatarStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	// Discard drops a picture saved by Save whose profile update then failed.
	Discard(ctx context.Context, stored string)
}

func checkImage(fh *multipart.FileHeader) (string, error) {
	name := resume.SanitizeFilename(fh.Filename)
	if !imageExt[strings.ToLower(filepath.Ext(name))] {
		return "", apperr.New(apperr.CodeValidation, "Profile picture must be an image (png, jpg, gif, webp).")
	}
	return name, nil
}

// LocalAvatars writes pictures under dir.
type LocalAvatars struct {
	Dir string
}

func (l LocalAvatars) Save(_ context.Context, fh *multipart.FileHeader) (string, error) {
	name, err := checkImage(fh)
	if err != nil {
		return "", err
	}
	path, err := resume.SaveUpload(fh, l.Dir, resume.StoredName(name, time.Now().UTC()))
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "save profile picture", err)
	}
	return filepath.Base(path), nil
}

func (l LocalAvatars) Discard(ctx context.Context, stored string) {
	if stored == "" || stored != filepath.Base(stored) {
		return
	}
	if err := os.Remove(filepath.Join(l.Dir, stored)); err != nil && !os.IsNotExist(err) {
		logger.From(ctx).Warn("remove profile picture", "file", stored, "err", err)
	}
}

// CloudAvatars uploads pictures to Cloudinary.
type CloudAvatars struct {
	Client *cloudinary.Client
}

func (cl CloudAvatars) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	name, err := checkImage(fh)
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "open profile picture", err)
	}
	defer f.Close()
	res, err := cl.Client.Upload(ctx, f, name)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUpstream, "Could not upload the profile picture. Please try again.", err)
	}
	return res.SecureURL, nil
}

// Discard leaves hosted pictures in place; the client has no destroy call.
func (cl CloudAvatars) Discard(context.Context, string) {}
