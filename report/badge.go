package report

import (
	"fmt"
	"io"
	"text/template"
)

// Badge color thresholds, shields.io palette.
const (
	colorGreen       = "#4c1"
	colorYellowGreen = "#a4a61d"
	colorOrange      = "#fe7d37"
	colorRed         = "#e05d44"
)

var badgeTemplate = template.Must(template.New("badge").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="20" role="img" aria-label="api docs: {{.Label}}">
  <linearGradient id="s" x2="0" y2="100%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r">
    <rect width="{{.Width}}" height="20" rx="3" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="{{.LabelWidth}}" height="20" fill="#555"/>
    <rect x="{{.LabelWidth}}" width="{{.ValueWidth}}" height="20" fill="{{.Color}}"/>
    <rect width="{{.Width}}" height="20" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="11">
    <text x="{{.LabelCenter}}" y="14">api docs</text>
    <text x="{{.ValueCenter}}" y="14">{{.Label}}</text>
  </g>
</svg>
`))

type badgeData struct {
	Label       string
	Color       string
	Width       int
	LabelWidth  int
	ValueWidth  int
	LabelCenter int
	ValueCenter int
}

// BadgeColor maps a coverage percentage to its badge color.
func BadgeColor(percent float64) string {
	switch {
	case percent >= 90:
		return colorGreen
	case percent >= 75:
		return colorYellowGreen
	case percent >= 50:
		return colorOrange
	default:
		return colorRed
	}
}

// RenderBadge writes a flat SVG coverage badge.
func RenderBadge(w io.Writer, percent float64) error {
	label := fmt.Sprintf("%.0f%%", percent)
	d := badgeData{
		Label:      label,
		Color:      BadgeColor(percent),
		LabelWidth: 59,
		ValueWidth: 7*len(label) + 10,
	}
	d.Width = d.LabelWidth + d.ValueWidth
	d.LabelCenter = d.LabelWidth / 2
	d.ValueCenter = d.LabelWidth + d.ValueWidth/2
	return badgeTemplate.Execute(w, d)
}
