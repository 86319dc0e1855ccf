// Package models defines the domain types shared by the catalog, the store
// and the transports.
package models

import "time"

// Entity kinds that carry tags.
const (
	EntityHabit   = "habit"
	EntityReward  = "reward"
	EntityProduct = "product"
	EntityProfile = "profile"
)

// EntityKinds lists every accepted entity kind.
var EntityKinds = []string{EntityHabit, EntityReward, EntityProduct, EntityProfile}

// SuggestedTagCandidate is a non-official tag ranked by usage.
type SuggestedTagCandidate struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ScoreEntry is one row of a family's score board. FirstSeen orders ties.
type ScoreEntry struct {
	Tag       string    `json:"tag"`
	Score     int       `json:"score"`
	FirstSeen time.Time `json:"first_seen"`
}

// TaggingEvent describes the creation or edit of a tagged entity.
type TaggingEvent struct {
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	ExtraTags    []string `json:"extra_tags,omitempty"`
	PreviousTags []string `json:"previous_tags,omitempty"`
}

// TaggingResult is the outcome of recording a TaggingEvent.
type TaggingResult struct {
	Tags    []string `json:"tags"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}
