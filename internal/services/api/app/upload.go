package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const imageField = "image"

// saveUpload stores the multipart image, if any, and returns the sanitized
// client file name, which is what the classifier sees. Stored names get a
// uuid prefix so concurrent uploads never collide.
func (a *App) saveUpload(r *http.Request) (string, error) {
	file, hdr, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(a.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := sanitizeFilename(hdr.Filename)
	path := filepath.Join(a.cfg.UploadDir, uuid.NewString()+"_"+name)
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	n, err := io.Copy(out, file)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("store upload: %w", err)
	}
	a.logger.Debug("image stored", zap.String("path", path), zap.Int64("bytes", n))
	return name, nil
}

// sanitizeFilename keeps ASCII letters, digits, dot, dash and underscore;
// anything else becomes "_". Path components are dropped.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	clean = strings.TrimLeft(clean, "._")
	if clean == "" {
		return "upload"
	}
	return clean
}
