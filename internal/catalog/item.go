package catalog

// Catalog names for the listings the storefront renders.
const (
	Courses = "courses" // course grid
	Search  = "search"  // paginated course search page
	Blog    = "blog"    // blog listing
)

// Field names an Item attribute that can be searched or filtered on.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldProvider    Field = "provider"
	FieldCategory    Field = "category"
	FieldTags        Field = "tags"
	FieldLevel       Field = "level"
	FieldSchool      Field = "school"
)

// Item represents a course or blog post in a catalog
type Item struct {
	ID          int      `json:"id" yaml:"id"`
	Catalog     string   `json:"catalog" yaml:"catalog"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"` // course description or post excerpt
	Provider    string   `json:"provider,omitempty" yaml:"provider"`
	Category    string   `json:"category" yaml:"category"`
	Tags        []string `json:"tags,omitempty" yaml:"tags"`
	Level       string   `json:"level,omitempty" yaml:"level"`
	School      string   `json:"school,omitempty" yaml:"school"`
	Featured    bool     `json:"featured" yaml:"featured"`

	// Display metadata, never used for matching
	Rating      float64 `json:"rating,omitempty" yaml:"rating"`
	Students    string  `json:"students,omitempty" yaml:"students"`
	Price       string  `json:"price,omitempty" yaml:"price"`
	Duration    string  `json:"duration,omitempty" yaml:"duration"`
	Image       string  `json:"image,omitempty" yaml:"image"`
	PublishedAt string  `json:"published_at,omitempty" yaml:"published_at"`
	ReadTime    string  `json:"read_time,omitempty" yaml:"read_time"`
	Views       string  `json:"views,omitempty" yaml:"views"`
	Comments    int     `json:"comments,omitempty" yaml:"comments"`
	Likes       int     `json:"likes,omitempty" yaml:"likes"`
}

// Values returns the value(s) an item holds for a field. Single-valued
// fields yield a one-element slice, or nil when empty.
func (it Item) Values(f Field) []string {
	switch f {
	case FieldTags:
		return it.Tags
	case FieldTitle:
		return single(it.Title)
	case FieldDescription:
		return single(it.Description)
	case FieldProvider:
		return single(it.Provider)
	case FieldCategory:
		return single(it.Category)
	case FieldLevel:
		return single(it.Level)
	case FieldSchool:
		return single(it.School)
	default:
		return nil
	}
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}
