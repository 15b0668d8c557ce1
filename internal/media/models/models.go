// Package models holds the catalog types served by the media endpoints.
package models

// Item is one catalog entry.
type Item struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Genre    string `json:"genre"`
	Rank     int    `json:"rank"`
	ViewsDay int64  `json:"views_day"`
}

// Channel is a live stream entry.
type Channel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Group   string `json:"group"`
	Country string `json:"country"`
}

// SearchResult carries a query's matches plus the echo of the query itself.
type SearchResult struct {
	Query string `json:"query"`
	Items []Item `json:"items"`
	Total int    `json:"total"`
}
