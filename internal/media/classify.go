package media

import (
	"path/filepath"
	"strings"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// Extension tables for attachment classification. Anything not listed is a
// generic file.
var (
	videoExtensions = map[string]bool{
		".mp4": true, ".m4v": true, ".mov": true, ".webm": true,
		".mkv": true, ".avi": true, ".wmv": true, ".flv": true,
		".mpg": true, ".mpeg": true, ".ts": true, ".3gp": true,
	}

	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
		".webp": true, ".bmp": true, ".tiff": true, ".tif": true,
		".avif": true, ".heic": true, ".svg": true, ".ico": true,
	}
)

// IsVideo reports whether the filename has a known video extension.
func IsVideo(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsImage reports whether the filename has a known image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Classify buckets a filename into video, image, or generic file.
func Classify(name string) types.AttachmentType {
	switch {
	case IsVideo(name):
		return types.AttachmentVideo
	case IsImage(name):
		return types.AttachmentImage
	default:
		return types.AttachmentGenericFile
	}
}
