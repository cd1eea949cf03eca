package harvest

// Kind classifies a harvested content item by its URL path
type Kind string

const (
	KindVideo Kind = "video"
	KindPhoto Kind = "photo"
)

// Link is one harvested content item. Immutable once built.
type Link struct {
	// RawURL is the link target exactly as rendered
	RawURL string
	// Kind is derived from the URL path segment
	Kind Kind
	// Owner is the resolved owner name. Links without a parseable
	// owner are attributed to the tally leader at processing time.
	Owner string
}

// ResultSet is the harvest output: the dominant owner's links, videos
// before photos, each distinct URL exactly once. Built fresh from the
// current surface every run and never persisted.
type ResultSet struct {
	// Owner is the dominant owner's name
	Owner string
	// Links is the filtered, ordered link list
	Links []Link
	// Candidates is the total number of classified links before
	// owner filtering
	Candidates int
}

// URLs projects the result to raw URL strings, preserving order
func (rs *ResultSet) URLs() []string {
	urls := make([]string, len(rs.Links))
	for i, l := range rs.Links {
		urls[i] = l.RawURL
	}
	return urls
}
