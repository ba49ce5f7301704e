package stash

// Catalog entity shapes as returned by the Stash GraphQL API.

type Performer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Comma-space delimited alternate names.
	Aliases string `json:"aliases"`
}

type Studio struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Aliases string `json:"aliases"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SceneMovie struct {
	Movie      Movie `json:"movie"`
	SceneIndex int   `json:"scene_index"`
}

type Scene struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Details    string       `json:"details"`
	Date       string       `json:"date"`
	URL        string       `json:"url"`
	Director   string       `json:"director"`
	Rating     int          `json:"rating"`
	Organized  bool         `json:"organized"`
	Path       string       `json:"path"`
	Studio     *Studio      `json:"studio"`
	Performers []Performer  `json:"performers"`
	Tags       []Tag        `json:"tags"`
	Movies     []SceneMovie `json:"movies"`
}

// SceneMovieInput links a scene into a movie at a position.
type SceneMovieInput struct {
	MovieID    string `json:"movie_id"`
	SceneIndex *int   `json:"scene_index,omitempty"`
}

// SceneUpdateInput is the write-back payload. Nil pointers leave the
// corresponding scene field untouched.
type SceneUpdateInput struct {
	ID           string            `json:"id"`
	Title        *string           `json:"title,omitempty"`
	Details      *string           `json:"details,omitempty"`
	Date         *string           `json:"date,omitempty"`
	URL          *string           `json:"url,omitempty"`
	Director     *string           `json:"director,omitempty"`
	Rating       *int              `json:"rating,omitempty"`
	StudioID     *string           `json:"studio_id,omitempty"`
	PerformerIDs []string          `json:"performer_ids,omitempty"`
	TagIDs       []string          `json:"tag_ids,omitempty"`
	Movies       []SceneMovieInput `json:"movies,omitempty"`
	CoverImage   *string           `json:"cover_image,omitempty"`
	Organized    *bool             `json:"organized,omitempty"`
}
