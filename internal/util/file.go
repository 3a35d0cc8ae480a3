package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ValidateMimeType sniffs the content type from the first bytes of the
// reader and checks it against allowed prefixes or full types, like
// "image/", "audio/", "application/pdf".
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func IsAudio(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/") || mimeType == "video/webm"
}

// SafeJoin joins a base directory with a client-supplied relative path and
// rejects anything escaping the base.
func SafeJoin(base, rel string) (string, error) {
	cleaned := filepath.Clean("/" + rel)
	joined := filepath.Join(base, cleaned)
	if !strings.HasPrefix(joined, filepath.Clean(base)+string(filepath.Separator)) {
		return "", errors.New("invalid path")
	}
	return joined, nil
}
