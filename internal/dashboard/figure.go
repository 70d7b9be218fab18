package dashboard

// Figure is a chart specification in the shape Plotly's newPlot accepts:
// a list of traces plus a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one series on a figure. X and Y hold dates, years, numbers or
// labels depending on the trace type.
type Trace struct {
	Type        string       `json:"type"`
	Mode        string       `json:"mode,omitempty"`
	Name        string       `json:"name,omitempty"`
	X           any          `json:"x,omitempty"`
	Y           any          `json:"y,omitempty"`
	Z           [][]*float64 `json:"z,omitempty"`
	Text        []string     `json:"text,omitempty"`
	HoverInfo   string       `json:"hoverinfo,omitempty"`
	Orientation string       `json:"orientation,omitempty"`
	Marker      *Marker      `json:"marker,omitempty"`
	TextFont    *Font        `json:"textfont,omitempty"`
}

// Marker styles trace points or bars.
type Marker struct {
	Color string `json:"color,omitempty"`
}

// Font styles text.
type Font struct {
	Color string `json:"color,omitempty"`
	Size  int    `json:"size,omitempty"`
}

// Layout holds figure-level settings.
type Layout struct {
	Title        *Title  `json:"title,omitempty"`
	HoverMode    string  `json:"hovermode,omitempty"`
	XAxis        *Axis   `json:"xaxis,omitempty"`
	YAxis        *Axis   `json:"yaxis,omitempty"`
	Legend       *Legend `json:"legend,omitempty"`
	Height       int     `json:"height,omitempty"`
	PlotBGColor  string  `json:"plot_bgcolor,omitempty"`
	PaperBGColor string  `json:"paper_bgcolor,omitempty"`
	Font         *Font   `json:"font,omitempty"`
}

// Axis configures one axis.
type Axis struct {
	Title       *Title       `json:"title,omitempty"`
	Visible     *bool        `json:"visible,omitempty"`
	TickAngle   int          `json:"tickangle,omitempty"`
	RangeSlider *RangeSlider `json:"rangeslider,omitempty"`
}

// Title is a figure or axis caption.
type Title struct {
	Text string `json:"text"`
}

func title(text string) *Title {
	return &Title{Text: text}
}

// RangeSlider toggles the date range slider under an x axis.
type RangeSlider struct {
	Visible bool `json:"visible"`
}

// Legend positions the legend box.
type Legend struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Font *Font   `json:"font,omitempty"`
}

func hidden() *bool {
	v := false
	return &v
}
