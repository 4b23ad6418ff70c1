package giveaway

import (
	"fmt"
	"strconv"
)

// CollectRequested asks the collection worker to gather commenters of
// PostURL into the giveaway. Delivery is at-most-once.
type CollectRequested struct {
	GiveawayID int64  `json:"giveaway_id"`
	PostURL    string `json:"post_url"`
}

// Values encodes the event as stream entry fields
func (e CollectRequested) Values() map[string]interface{} {
	return map[string]interface{}{
		"giveaway_id": strconv.FormatInt(e.GiveawayID, 10),
		"post_url":    e.PostURL,
	}
}

// ParseCollectRequested decodes stream entry fields
func ParseCollectRequested(values map[string]interface{}) (CollectRequested, error) {
	var e CollectRequested
	rawID, ok := values["giveaway_id"].(string)
	if !ok {
		return e, fmt.Errorf("missing giveaway_id")
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return e, fmt.Errorf("invalid giveaway_id %q", rawID)
	}
	postURL, ok := values["post_url"].(string)
	if !ok || postURL == "" {
		return e, fmt.Errorf("missing post_url")
	}
	e.GiveawayID = id
	e.PostURL = postURL
	return e, nil
}
