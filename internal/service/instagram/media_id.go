package instagram

import (
	"errors"
	"math/big"
	"regexp"
	"strings"
)

const shortcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var (
	ErrMalformedPostURL = errors.New("post url has no shortcode")
	ErrInvalidShortcode = errors.New("shortcode contains characters outside the alphabet")
)

var postPathRe = regexp.MustCompile(`/(?:p|reel|tv)/([^/?#]+)`)

// ExtractPostID returns the shortcode following /p/ (or /reel/, /tv/) in a post URL.
func ExtractPostID(postURL string) (string, error) {
	m := postPathRe.FindStringSubmatch(strings.TrimSpace(postURL))
	if m == nil || m[1] == "" {
		return "", ErrMalformedPostURL
	}
	return m[1], nil
}

// ShortcodeToMediaID decodes a post shortcode into the numeric media id the
// comments API expects, as a decimal string.
func ShortcodeToMediaID(shortcode string) (string, error) {
	if shortcode == "" {
		return "", ErrInvalidShortcode
	}
	id := new(big.Int)
	base := big.NewInt(int64(len(shortcodeAlphabet)))
	for _, r := range shortcode {
		idx := strings.IndexRune(shortcodeAlphabet, r)
		if idx < 0 {
			return "", ErrInvalidShortcode
		}
		id.Mul(id, base)
		id.Add(id, big.NewInt(int64(idx)))
	}
	return id.String(), nil
}

// MediaIDFromURL chains ExtractPostID and ShortcodeToMediaID
func MediaIDFromURL(postURL string) (string, error) {
	code, err := ExtractPostID(postURL)
	if err != nil {
		return "", err
	}
	return ShortcodeToMediaID(code)
}
