package giveaway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectRequested_RoundTrip(t *testing.T) {
	in := CollectRequested{GiveawayID: 42, PostURL: "https://www.instagram.com/p/CxOz9uFv7pL/"}

	values := in.Values()
	assert.Equal(t, "42", values["giveaway_id"])

	out, err := ParseCollectRequested(values)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseCollectRequested_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{"missing id", map[string]interface{}{"post_url": "u"}},
		{"non numeric id", map[string]interface{}{"giveaway_id": "abc", "post_url": "u"}},
		{"zero id", map[string]interface{}{"giveaway_id": "0", "post_url": "u"}},
		{"missing url", map[string]interface{}{"giveaway_id": "1"}},
		{"empty url", map[string]interface{}{"giveaway_id": "1", "post_url": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCollectRequested(tt.values)
			assert.Error(t, err)
		})
	}
}
