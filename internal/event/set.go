package event

import "appeal-engine/internal/model"

// Set is the collection of buses the engines communicate over.
type Set struct {
	Hub *Hub

	// Day lifecycle
	DayStarted   *Bus[int]
	DayDate      *Bus[string]
	RulesLoaded  *Bus[string]
	LoadComplete *Bus[Unit]
	RecordCount  *Bus[int]
	DayFinished  *Bus[Unit]
	Hook         *Bus[string]

	// Appeals
	RecordLoaded *Bus[model.UserRecord]
	Decision     *Bus[model.Decision]
	Mistake      *Bus[string]
	Judgment     *Bus[model.Judgment]

	// Scoring and review
	SummaryRequest    *Bus[Unit]
	SummaryReady      *Bus[model.DayReport]
	Solidify          *Bus[Unit]
	RecordsSolidified *Bus[model.Solidified]

	// Direct messages
	FeedDelivered *Bus[model.FeedMessage]
	FeedTimestamp *Bus[Unit]
}

// NewSet creates every bus and tracks it in a fresh hub.
func NewSet() *Set {
	h := NewHub()
	return &Set{
		Hub:               h,
		DayStarted:        Track[int](h, "day_started"),
		DayDate:           Track[string](h, "day_date"),
		RulesLoaded:       Track[string](h, "rules_loaded"),
		LoadComplete:      Track[Unit](h, "load_complete"),
		RecordCount:       Track[int](h, "record_count"),
		DayFinished:       Track[Unit](h, "day_finished"),
		Hook:              Track[string](h, "hook"),
		RecordLoaded:      Track[model.UserRecord](h, "record_loaded"),
		Decision:          Track[model.Decision](h, "decision"),
		Mistake:           Track[string](h, "mistake"),
		Judgment:          Track[model.Judgment](h, "judgment"),
		SummaryRequest:    Track[Unit](h, "summary_request"),
		SummaryReady:      Track[model.DayReport](h, "summary_ready"),
		Solidify:          Track[Unit](h, "solidify"),
		RecordsSolidified: Track[model.Solidified](h, "records_solidified"),
		FeedDelivered:     Track[model.FeedMessage](h, "feed_delivered"),
		FeedTimestamp:     Track[Unit](h, "feed_timestamp"),
	}
}

// Close clears every handler in the set.
func (s *Set) Close() {
	s.Hub.ClearAll()
}
