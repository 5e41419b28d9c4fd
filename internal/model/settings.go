package model

// Parameter keys used in Settings.Parameters.
const (
	ParamBinaryThreshold = "binarythreshold"
	ParamTextDilationX   = "textdilationX"
	ParamTextDilationY   = "textdilationY"
	ParamImageDilationX  = "imagedilationX"
	ParamImageDilationY  = "imagedilationY"
)

// Settings is the caller-facing configuration of one book.
//
// A Settings value is only valid against the book whose id it carries.
type Settings struct {
	BookID       int                        `json:"book"`
	Parameters   map[string]int             `json:"parameters"`
	Regions      map[string]*RegionSettings `json:"regions"`
	Pages        map[int]*PageSettings      `json:"pages"`
	ImageSegType string                     `json:"imageSegType"`
	Combine      bool                       `json:"combine"`
}

// RegionSettings configures how one region type is assigned.
type RegionSettings struct {
	Type             string             `json:"type"`
	MinSize          int                `json:"minSize"`
	MaxOccurances    int                `json:"maxOccurances"`
	PriorityPosition string             `json:"priorityPosition"`
	Polygons         map[string]Polygon `json:"polygons"`
}

// PageSettings holds the manual edits of one page: fixed segments that the
// engine must keep as-is and cut lines that separate touching content.
type PageSettings struct {
	Page     int                `json:"page"`
	Segments map[string]Polygon `json:"segments"`
	Cuts     map[string]Polygon `json:"cuts"`
}

// NewSettings creates an empty Settings for a book.
func NewSettings(bookID int) *Settings {
	return &Settings{
		BookID:     bookID,
		Parameters: make(map[string]int),
		Regions:    make(map[string]*RegionSettings),
		Pages:      make(map[int]*PageSettings),
	}
}

// NewPageSettings creates empty page settings.
func NewPageSettings(pageID int) *PageSettings {
	return &PageSettings{
		Page:     pageID,
		Segments: make(map[string]Polygon),
		Cuts:     make(map[string]Polygon),
	}
}
