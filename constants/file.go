package constants

import "strings"

// Document formats understood by the extractor.
const (
	PDF = "PDF"
	TXT = "TXT"
)

// FileTypes holds the document formats a specification package may contain.
var FileTypes = []string{PDF, TXT}

// AllowedExtensions holds the default file extensions picked up by batch scoring.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a document format, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TXT
	default:
		return ""
	}
}
