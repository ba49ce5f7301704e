package model

import "github.com/pokerjest/stashNfoHook/internal/stash"

// Source identifies which parser produced a SceneRecord.
type Source string

const (
	SourceNFO   Source = "nfo" // structured sidecar file
	SourceRegex Source = "re"  // regex match on the file path
)

// SceneRecord holds the metadata extracted for one scene, before any
// catalog reconciliation. Zero values mean "not found in this source".
type SceneRecord struct {
	Source     Source   `json:"source"`
	File       string   `json:"file"` // sidecar or config file that produced this record
	Title      string   `json:"title"`
	Details    string   `json:"details"`
	Studio     string   `json:"studio"`
	Movie      string   `json:"movie"`
	Director   string   `json:"director"`
	Date       string   `json:"date"`   // ISO YYYY-MM-DD
	Rating     int      `json:"rating"` // 0-5, 0 = unset
	URL        string   `json:"url"`
	Actors     []string `json:"actors"`
	Tags       []string `json:"tags"`
	SceneIndex int      `json:"scene_index"` // position inside Movie, 0 = unset
	CoverImage string   `json:"cover_image"` // data URI, may be large
	OtherImage string   `json:"other_image"`
}

// IsEmpty reports whether nothing useful was extracted at all.
func (r *SceneRecord) IsEmpty() bool {
	return r == nil || (r.Title == "" && r.Details == "" && r.Studio == "" &&
		r.Movie == "" && r.Director == "" && r.Date == "" && r.Rating == 0 &&
		r.URL == "" && len(r.Actors) == 0 && len(r.Tags) == 0 &&
		r.CoverImage == "" && r.OtherImage == "")
}

// Field names a record field for blacklisting and for the
// organized-completeness check. Values match the config file spelling.
type Field string

const (
	FieldTitle      Field = "title"
	FieldDetails    Field = "details"
	FieldStudio     Field = "studio"
	FieldMovie      Field = "movie"
	FieldDirector   Field = "director"
	FieldDate       Field = "date"
	FieldRating     Field = "rating"
	FieldURL        Field = "url"
	FieldPerformers Field = "performers"
	FieldTags       Field = "tags"
	FieldCoverImage Field = "cover_image"
)

// FieldSet is a set of record fields, used for the blacklist.
type FieldSet map[Field]bool

// NewFieldSet builds a FieldSet from config strings. Unknown names are
// kept as-is and simply never match.
func NewFieldSet(names []string) FieldSet {
	s := make(FieldSet, len(names))
	for _, n := range names {
		s[Field(n)] = true
	}
	return s
}

func (s FieldSet) Has(f Field) bool {
	return s[f]
}

// TriggerKind discriminates how the hook identified the scene.
type TriggerKind int

const (
	TriggerByID TriggerKind = iota
	TriggerInline
)

// Trigger is the resolved hook input: either a scene id to look up, or a
// full scene object embedded in the hook payload. The variant is decided
// once when the hook JSON is decoded, downstream code switches on Kind.
type Trigger struct {
	Kind     TriggerKind
	HookType string
	SceneID  string
	Scene    *stash.Scene
}
