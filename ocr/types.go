package ocr

// RGB is a display color attached to detected text fields.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// DefaultFieldColor is the fixed display color for text field boxes.
var DefaultFieldColor = RGB{R: 255}

// TextField is one detected text unit with its axis-aligned bounding box.
// The box is derived from the service's bounding polygon, which is not
// guaranteed to be axis-aligned.
type TextField struct {
	ID         int     `json:"id"`
	Label      string  `json:"label"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	BoxX       int     `json:"box_x"`
	BoxY       int     `json:"box_y"`
	BoxWidth   int     `json:"box_width"`
	BoxHeight  int     `json:"box_height"`
	Color      RGB     `json:"color"`
}

// Result holds the output from one text detection call
type Result struct {
	// Text is the full detected text block (the aggregate annotation)
	Text string

	// Fields are the individual text units in document order
	Fields []TextField

	// Additional provider-specific metadata
	Metadata map[string]string
}
