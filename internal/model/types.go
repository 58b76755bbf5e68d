// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	ChapterID int
	Words     int
	Seed      int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	ChapterID int
	Since     *time.Time
	Last      int
	KeyWindow int
	WeakTop   int
}

// Attempt captures a completed chapter attempt for history.
type Attempt struct {
	ID         string
	ChapterID  int
	StartedAt  time.Time
	EndedAt    time.Time
	TextLength int
	Words      int
	Correct    int
	Errors     int
	WPM        int
	Accuracy   int
	Stars      int
	DurationMs int64
}

// KeyStats stores per-key stats for an attempt.
type KeyStats struct {
	Key          string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// KeyAggregate aggregates key stats across attempts.
type KeyAggregate struct {
	Key          string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// AttemptAggregate summarizes an attempt for reporting.
type AttemptAggregate struct {
	AttemptID string
	ChapterID int
	EndedAt   time.Time
	WPM       int
	Accuracy  int
	Stars     int
	Errors    int
}
