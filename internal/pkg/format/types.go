package format

import (
	"path/filepath"
	"strings"
)

// Material kinds as detected from a file name. They match models.MaterialType.
const (
	KindPDF          = "pdf"
	KindDocument     = "document"
	KindPresentation = "presentation"
	KindVideo        = "video"
	KindAudio        = "audio"
	KindOther        = "other"
)

var kindByExt = map[string]string{
	"pdf":  KindPDF,
	"doc":  KindDocument,
	"docx": KindDocument,
	"ppt":  KindPresentation,
	"pptx": KindPresentation,
	"mp4":  KindVideo,
	"webm": KindVideo,
	"mov":  KindVideo,
	"mp3":  KindAudio,
	"wav":  KindAudio,
	"ogg":  KindAudio,
}

// DetectKind maps a file name's extension onto a material kind.
func DetectKind(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if k, ok := kindByExt[ext]; ok {
		return k
	}
	return KindOther
}

// BaseTitle is the file name up to its first dot, the default title of an
// uploaded material.
func BaseTitle(name string) string {
	name = filepath.Base(name)
	if i := strings.Index(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// Upload limits in bytes.
const (
	MaxFileSize     int64 = 200 << 20
	MaxDocumentSize int64 = 50 << 20
	MaxVideoSize    int64 = 200 << 20
	MaxAudioSize    int64 = 50 << 20
	MaxImageSize    int64 = 5 << 20
)

// Supported upload MIME types.
var (
	ImageFormats    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	DocumentFormats = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
	}
	VideoFormats = []string{"video/mp4", "video/webm", "video/ogg"}
	AudioFormats = []string{"audio/mpeg", "audio/ogg", "audio/wav"}
)

// MaxSizeFor returns the upload limit for a material kind.
func MaxSizeFor(kind string) int64 {
	switch kind {
	case KindVideo:
		return MaxVideoSize
	case KindAudio:
		return MaxAudioSize
	case KindPDF, KindDocument, KindPresentation:
		return MaxDocumentSize
	default:
		return MaxFileSize
	}
}

// AllowedUploads lists every supported MIME type plus the extensions
// DetectKind recognises, for validation.FileType.
func AllowedUploads() []string {
	out := make([]string, 0, 32)
	out = append(out, DocumentFormats...)
	out = append(out, VideoFormats...)
	out = append(out, AudioFormats...)
	out = append(out, ImageFormats...)
	for ext := range kindByExt {
		out = append(out, "."+ext)
	}
	return out
}
