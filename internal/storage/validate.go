package storage

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyImage       = errors.New("image is empty")
	ErrUnsupportedImage = errors.New("only JPG, PNG, GIF, WEBP and BMP images are supported")
)

var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".heic": true,
}

// DetectImage sniffs the leading bytes of data and returns the content type
// and the file extension to store it under. SVG and HTML are always refused.
func DetectImage(filename string, data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", ErrEmptyImage
	}

	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "text/") || strings.Contains(detected, "xml") {
		return "", "", ErrUnsupportedImage
	}

	if ext, ok := extByMime[detected]; ok {
		return detected, ext, nil
	}

	// Camera formats such as HEIC sniff as octet-stream; trust the extension.
	fileExt := strings.ToLower(filepath.Ext(filename))
	if detected == "application/octet-stream" && allowedExt[fileExt] {
		return detected, fileExt, nil
	}

	return "", "", ErrUnsupportedImage
}
