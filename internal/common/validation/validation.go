package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/Voridan/giveaway-platform/internal/common/errors"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxURLLength         = 2048
	MaxNicknameLength    = 64
)

// ValidateTitle checks a giveaway title after trimming
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.NewValidationError("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return errors.NewValidationError("title", fmt.Sprintf("cannot exceed %d characters", MaxTitleLength))
	}
	return nil
}

// ValidateDescription allows an empty description
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return errors.NewValidationError("description", fmt.Sprintf("cannot exceed %d characters", MaxDescriptionLength))
	}
	return nil
}

// ValidateURL accepts an empty value or an absolute http(s) URL.
func ValidateURL(field, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if len(raw) > MaxURLLength {
		return errors.NewValidationError(field, fmt.Sprintf("cannot exceed %d characters", MaxURLLength))
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewValidationError(field, "must be an absolute http(s) url")
	}
	return nil
}

// ValidateNicknames rejects nicknames longer than the participant column allows
func ValidateNicknames(nicknames []string) error {
	for _, n := range nicknames {
		if utf8.RuneCountInString(n) > MaxNicknameLength {
			return errors.NewValidationError("participants", fmt.Sprintf("nickname %q exceeds %d characters", n, MaxNicknameLength))
		}
	}
	return nil
}

// ValidatePositiveInt checks ids coming from operator input
func ValidatePositiveInt(value int64, fieldName string) error {
	if value <= 0 {
		return errors.NewValidationError(fieldName, "must be positive")
	}
	return nil
}
