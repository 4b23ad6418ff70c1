package giveaway

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Shape selects which relationship a listing is scoped to
type Shape int

const (
	ShapeUnmoderated Shape = iota // global moderation queue
	ShapeOwned                    // owned by UserID
	ShapePartnered                // UserID is a partner
)

func (s Shape) String() string {
	switch s {
	case ShapeUnmoderated:
		return "unmoderated"
	case ShapeOwned:
		return "owned"
	case ShapePartnered:
		return "partnered"
	default:
		return "unknown"
	}
}

// PageQuery describes one page request. LastItemID narrows the candidate
// set to ids after it (or before it when Backward is set), Offset then skips
// within that set.
type PageQuery struct {
	Shape      Shape
	UserID     int64
	LastItemID *int64
	Offset     int
	Limit      int
	Backward   bool
}

// Normalize applies defaults and bounds. The cursor is passed through as given.
func (q PageQuery) Normalize() PageQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Page is a bounded slice of giveaways in ascending id order, with the
// total number of rows matching the shape.
type Page struct {
	Items []Giveaway `json:"items"`
	Total int        `json:"total"`
}
