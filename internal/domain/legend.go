package domain

// Position is a map corner a control is pinned to.
type Position string

const (
	TopLeft     Position = "topleft"
	TopRight    Position = "topright"
	BottomLeft  Position = "bottomleft"
	BottomRight Position = "bottomright"
)

// Legend is the static overlay explaining what the markers measure.
type Legend struct {
	Title    string   `json:"title" yaml:"title"`
	Subtitle string   `json:"subtitle" yaml:"subtitle"`
	IconURL  string   `json:"icon_url" yaml:"icon_url"`
	Position Position `json:"position" yaml:"position"`
}

// DefaultLegend returns the stock legend.
func DefaultLegend() Legend {
	return Legend{
		Title:    "Accident Data Legend",
		Subtitle: "Number of fatalities from cars",
		IconURL:  "img/R.png",
		Position: BottomRight,
	}
}
