package models

// SearchResult is one scored hit from the brute-force document scan.
type SearchResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Snippet string `json:"snippet"`
	Score   int    `json:"score"`
}

// SearchResponse carries the capped, ranked results plus the total number
// of matches before capping.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}
