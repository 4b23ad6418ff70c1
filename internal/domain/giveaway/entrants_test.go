package giveaway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNickname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sara", "sara"},
		{"  @John  ", "john"},
		{"@@double", "@double"},
		{"@", ""},
		{"   ", ""},
		{"MiXeD_Case.99", "mixed_case.99"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNickname(tt.in))
		})
	}
}

func TestParseNicknames(t *testing.T) {
	got := ParseNicknames("  sara\tJohn\n@luke  john   SARA @ ")
	assert.Equal(t, []string{"sara", "john", "luke"}, got)

	assert.Empty(t, ParseNicknames(""))
	assert.Empty(t, ParseNicknames(" \n\t "))
}

func TestEntrantSet_Merge(t *testing.T) {
	set := NewEntrantSet(ParseNicknames("sara john luke")...)
	require.Equal(t, 3, set.Len())

	added := set.Merge(ParseNicknames("john mike"))

	assert.Equal(t, []string{"mike"}, added)
	assert.Equal(t, 4, set.Len())
	assert.Equal(t, []string{"sara", "john", "luke", "mike"}, set.Members())
}

func TestEntrantSet_MergeIsIdempotent(t *testing.T) {
	set := NewEntrantSet("a", "b")

	assert.Equal(t, []string{"c"}, set.Merge([]string{"c", "A"}))
	assert.Empty(t, set.Merge([]string{"c", "a", "b"}))
	assert.Equal(t, 3, set.Len())
}

func TestEntrantSet_Contains(t *testing.T) {
	set := NewEntrantSet("@Sara")

	assert.True(t, set.Contains("sara"))
	assert.True(t, set.Contains(" SARA "))
	assert.False(t, set.Contains("john"))
}

func TestEntrantSet_MembersIsCopy(t *testing.T) {
	set := NewEntrantSet("a")
	m := set.Members()
	m[0] = "z"

	assert.Equal(t, []string{"a"}, set.Members())
}
