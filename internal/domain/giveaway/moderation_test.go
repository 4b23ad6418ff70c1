package giveaway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGiveaway_CheckCollect(t *testing.T) {
	tests := []struct {
		name   string
		g      Giveaway
		caller int64
		want   Gate
	}{
		{"open", Giveaway{OwnerID: 1}, 1, GateOpen},
		{"not owner wins over moderation", Giveaway{OwnerID: 1, OnModeration: true, Ended: true}, 2, GateNotOwner},
		{"moderation before ended", Giveaway{OwnerID: 1, OnModeration: true, Ended: true}, 1, GateOnModeration},
		{"ended", Giveaway{OwnerID: 1, Ended: true}, 1, GateEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.g.CheckCollect(tt.caller))
		})
	}
}

func TestGiveaway_State(t *testing.T) {
	assert.Equal(t, StatePending, (&Giveaway{OnModeration: true}).State())
	assert.Equal(t, StateApproved, (&Giveaway{}).State())
}

func TestGiveaway_Collectable(t *testing.T) {
	assert.True(t, (&Giveaway{}).Collectable())
	assert.False(t, (&Giveaway{OnModeration: true}).Collectable())
	assert.False(t, (&Giveaway{Ended: true}).Collectable())
}
