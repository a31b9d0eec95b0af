package guest

import (
	"mime"
	"strings"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeText = "text/plain"
)

// mediaType returns the lower-cased media type of a content-type header
// value, without parameters.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

func isJSON(mt string) bool {
	return mt == contentTypeJSON || strings.HasSuffix(mt, "+json")
}

func isBinary(mt string) bool {
	if mt == "application/octet-stream" {
		return true
	}
	major, _, _ := strings.Cut(mt, "/")
	switch major {
	case "image", "audio", "video":
		return true
	}
	return false
}
