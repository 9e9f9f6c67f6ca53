package search

// Result is a single search hit returned to the caller.
type Result struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet"`
	ProcessOrder string `json:"processOrder"`
	Machine      string `json:"machine"`
	Line         string `json:"line"`
	Shift        string `json:"shift"`
	ReportDate   string `json:"reportDate"`
}

// Query describes a search request over past submissions.
type Query struct {
	Text        string
	FilterShift string // empty = all shifts
	FilterLine  string
	Limit       int
	Offset      int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// SubmissionRecord is the data we index for a submission.
type SubmissionRecord struct {
	ID           string `json:"id"`
	ProcessOrder string `json:"processOrder"`
	Plant        string `json:"plant"`
	Line         string `json:"line"`
	Machine      string `json:"machine"`
	Shift        string `json:"shift"`
	ReportDate   string `json:"reportDate"`
	SubmittedBy  string `json:"submittedBy"`
	// Activities is the space-joined activity names found in the
	// submission's snapshot fragments, extracted at ingest time.
	Activities string `json:"activities"`
}
