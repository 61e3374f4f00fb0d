// Package domain contains core concepts of the chat system.
// This file defines SearchResult records and related rules.
// Results are immutable once scraped and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchResult is one scraped entry of the data warehouse.
type SearchResult struct {
	ID       uuid.UUID // unique identifier
	Title    string
	Summary  string
	URL      string
	CoverURL string
	Keyword  string // the query that produced this result
	At       time.Time
}
