package giveaway

// State is the moderation position of a giveaway
type State string

const (
	StatePending  State = "pending_moderation"
	StateApproved State = "approved"
)

func (g *Giveaway) State() State {
	if g.OnModeration {
		return StatePending
	}
	return StateApproved
}

// Collectable reports whether participant collection may run
func (g *Giveaway) Collectable() bool {
	return !g.OnModeration && !g.Ended
}

// Gate is the reason a collection request was refused
type Gate int

const (
	GateOpen Gate = iota
	GateNotOwner
	GateOnModeration
	GateEnded
)

// CheckCollect evaluates who may start collection. Ownership is checked
// first, then moderation, then the ended flag.
func (g *Giveaway) CheckCollect(callerID int64) Gate {
	switch {
	case g.OwnerID != callerID:
		return GateNotOwner
	case g.OnModeration:
		return GateOnModeration
	case g.Ended:
		return GateEnded
	default:
		return GateOpen
	}
}
