package complaint

import (
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"

	"github.com/gabriel-vasile/mimetype"
)

func imageError(msg string) error {
	return models.ValidationError{Field: "image", Message: msg}
}

// ValidateImage checks a base64 data URL photo: the declared type must be an
// allowed image type, the decoded payload must fit MaxImageSize, and the
// bytes themselves must sniff as the declared type.
func ValidateImage(dataURL string) error {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return imageError("must be a base64 data URL")
	}

	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !slices.Contains(config.AllowedImageTypes, declared) {
		return imageError("please upload a JPEG, PNG or WebP image")
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > config.MaxImageSize+2 {
		return imageError(fmt.Sprintf("must be smaller than %dMB", config.MaxImageSize>>20))
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return imageError("payload is not valid base64")
	}
	if len(raw) > config.MaxImageSize {
		return imageError(fmt.Sprintf("must be smaller than %dMB", config.MaxImageSize>>20))
	}

	if detected := mimetype.Detect(raw); !detected.Is(declared) {
		return imageError(fmt.Sprintf("content is %s, not %s", detected.String(), declared))
	}
	return nil
}
