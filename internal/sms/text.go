package sms

import (
	"regexp"
	"strings"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/nyaruka/phonenumbers"
)

var emojiPattern = regexp.MustCompile("[\U0001F300-\U0001F64F\U0001F680-\U0001F6FF\u2600-\u26FF\u2700-\u27BF]")

// CleanText strips emoji that SMS carriers commonly mangle.
func CleanText(text string) string {
	return emojiPattern.ReplaceAllString(text, "")
}

// FormatPhone normalizes number to E.164, resolving national numbers against region.
func FormatPhone(number, region string) (string, error) {
	parsed, err := phonenumbers.Parse(strings.TrimSpace(number), region)
	if err != nil {
		return "", errs.Validation("invalid phone number %q: %v", number, err)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// IsValidNumber is the local, format-only validation.
func IsValidNumber(number, region string) bool {
	parsed, err := phonenumbers.Parse(strings.TrimSpace(number), region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}
