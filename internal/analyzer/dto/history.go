package dto

import "time"

// HistoryFilter selects saved analyses.
type HistoryFilter struct {
	Symbol string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// DefaultHistoryLimit applies when the filter limit is unset.
const DefaultHistoryLimit = 50

// MaxHistoryLimit caps a single history page.
const MaxHistoryLimit = 500
