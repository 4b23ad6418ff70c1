package giveaway

import "time"

// Giveaway is the aggregate representing one entry-collection campaign
// tied to a social-media post.
type Giveaway struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PostURL     string `json:"post_url"`
	ImageURL    string `json:"image_url"`

	OnModeration bool `json:"on_moderation"`
	Ended        bool `json:"ended"`

	// Participants is filled on single-giveaway reads only; listings carry the count.
	Participants      []string `json:"participants,omitempty"`
	ParticipantsCount int      `json:"participants_count"`
	PartnerIDs        []int64  `json:"partner_ids"`

	// WinnerID references a participant row and is set only once Ended is true.
	WinnerID *int64  `json:"winner_id,omitempty"`
	Winner   *string `json:"winner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fields holds the display metadata of a giveaway
type Fields struct {
	Title       string
	Description string
	PostURL     string
	ImageURL    string
}

// Update is a storage-level patch. Nil fields are left untouched,
// Participants are appended with dedup, PartnerIDs replaces the partner set.
type Update struct {
	Title        *string
	Description  *string
	PostURL      *string
	ImageURL     *string
	Participants []string
	PartnerIDs   *[]int64
}

// Results is the outcome of a giveaway as shown to its owner
type Results struct {
	GiveawayID   int64    `json:"giveaway_id"`
	Participants []string `json:"participants"`
	Winner       *string  `json:"winner,omitempty"`
}

// ParticipantsStat is one row of an owner's statistics
type ParticipantsStat struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	ParticipantsCount int    `json:"participants_count"`
}
