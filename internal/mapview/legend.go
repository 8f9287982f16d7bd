package mapview

import (
	"html/template"
	"io"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
)

var legendTmpl = template.Must(template.New("legend").Parse(
	`<h4>{{.Title}}</h4><h5>{{.Subtitle}}</h5>{{if .IconURL}}<img src="{{.IconURL}}" alt="" style="width: 40px; height: 40px">{{end}}`,
))

// legendControl is the static legend overlay.
type legendControl struct {
	legend domain.Legend
}

func (c legendControl) Position() domain.Position { return c.legend.Position }

func (c legendControl) Render(w io.Writer) error {
	return legendTmpl.Execute(w, c.legend)
}
