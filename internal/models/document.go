package models

// DocumentInfo describes one source document known to the system: its
// original filename and the normalized index name it is addressed by.
type DocumentInfo struct {
	Filename  string
	IndexName string
	Loaded    bool
}

// SearchResult is one retrieved chunk with its relevance score. Scores follow
// the cosine similarity convention: higher is more relevant, 0 is the
// no-relevance floor.
type SearchResult struct {
	Text  string
	Score float64
}
