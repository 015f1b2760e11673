package discogs

// SearchResult is a single hit from the database search endpoint.
// Missing keys decode to zero values.
type SearchResult struct {
	ID         int      `json:"id"`
	Artist     string   `json:"artist"`
	Title      string   `json:"title"`
	Year       string   `json:"year"`
	Format     []string `json:"format"`
	Label      []string `json:"label"`
	Country    string   `json:"country"`
	Thumb      string   `json:"thumb"`
	CoverImage string   `json:"cover_image"`
}

// Release is the full release document returned by /releases/{id}.
type Release struct {
	ID       int      `json:"id"`
	Artists  []Artist `json:"artists"`
	Title    string   `json:"title"`
	Year     int      `json:"year"` // 0 when unknown
	Released string   `json:"released"`
	Country  string   `json:"country"`
	Labels   []Label  `json:"labels"`
	Genres   []string `json:"genres"`
	Styles   []string `json:"styles"`
	Formats  []Format `json:"formats"`
	Images   []Image  `json:"images"`
	URI      string   `json:"uri"`
}

// Artist is a credited release artist.
type Artist struct {
	Name string `json:"name"`
}

// Label is a release label with its catalog number.
type Label struct {
	Name  string `json:"name"`
	CatNo string `json:"catno"`
}

// Format is a physical format entry, e.g. {Vinyl, [LP, Album]}.
type Format struct {
	Name         string   `json:"name"`
	Descriptions []string `json:"descriptions"`
}

// Image is a release image reference.
type Image struct {
	URI string `json:"uri"`
}
