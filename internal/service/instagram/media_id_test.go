package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPostID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.instagram.com/p/CxOz9uFv7pL/", "CxOz9uFv7pL"},
		{"https://instagram.com/p/CxOz9uFv7pL", "CxOz9uFv7pL"},
		{"https://www.instagram.com/p/C3u4Zn_sR-6/?igsh=abc", "C3u4Zn_sR-6"},
		{"https://www.instagram.com/reel/DAq1nOhN1yL/#x", "DAq1nOhN1yL"},
		{"  https://www.instagram.com/tv/BA/  ", "BA"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ExtractPostID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPostID_Malformed(t *testing.T) {
	for _, u := range []string{"", "https://www.instagram.com/", "https://www.instagram.com/p/", "https://example.com/user/sara"} {
		_, err := ExtractPostID(u)
		assert.ErrorIs(t, err, ErrMalformedPostURL, u)
	}
}

func TestShortcodeToMediaID(t *testing.T) {
	tests := map[string]string{
		"B":           "1",
		"BA":          "64",
		"-_":          "4031",
		"CxOz9uFv7pL": "3192717727600982603",
		"C3u4Zn_sR-6": "3309830827699937210",
		"DAq1nOhN1yL": "3470822254956731531",
	}
	for code, want := range tests {
		got, err := ShortcodeToMediaID(code)
		require.NoError(t, err, code)
		assert.Equal(t, want, got, code)
	}
}

func TestShortcodeToMediaID_Invalid(t *testing.T) {
	for _, code := range []string{"", "abc$", "ab c", "é"} {
		_, err := ShortcodeToMediaID(code)
		assert.ErrorIs(t, err, ErrInvalidShortcode, code)
	}
}

func TestMediaIDFromURL(t *testing.T) {
	id, err := MediaIDFromURL("https://www.instagram.com/p/CxOz9uFv7pL/")
	require.NoError(t, err)
	assert.Equal(t, "3192717727600982603", id)

	_, err = MediaIDFromURL("https://www.instagram.com/stories/x")
	assert.ErrorIs(t, err, ErrMalformedPostURL)
}
