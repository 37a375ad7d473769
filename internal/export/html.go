package export

import (
	"encoding/base64"
	"html/template"
	"strings"

	"github.com/tphakala/butterfly-go/internal/analytics"
	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/taxonomy"
)

// ChartImages carries pre-rendered chart rasters supplied by the presentation
// layer. Either may be nil: chart capture depends on canvas timing the core
// cannot guarantee, so the report must degrade to data tables.
type ChartImages struct {
	SpeciesPie []byte // PNG of the species distribution chart
	Intervals  []byte // PNG of the interval activity chart
}

// reportData is the template context for the HTML report.
type reportData struct {
	List    *datastore.List
	Summary analytics.Summary

	// Data URIs; empty string selects the table fallback
	SpeciesChartURI   template.URL
	IntervalsChartURI template.URL
}

// ToHTMLReport renders a self-contained document: list metadata, summary
// statistics, complete species and family breakdowns, and either inline
// chart images or equivalent data tables. The output needs no network or
// chart library to view.
func ToHTMLReport(list *datastore.List, observations []datastore.Observation, taxa *taxonomy.Dataset, charts *ChartImages) (string, error) {
	if len(observations) == 0 {
		return "", ErrNoObservations
	}

	data := reportData{
		List:    list,
		Summary: analytics.BuildSummary(list, observations, taxa),
	}

	if charts != nil {
		data.SpeciesChartURI = pngDataURI(charts.SpeciesPie)
		data.IntervalsChartURI = pngDataURI(charts.Intervals)
	}

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, &data); err != nil {
		return "", errors.Newf("rendering HTML report: %v", err).
			Category(errors.CategoryExport).
			Component("export").
			Build()
	}

	return sb.String(), nil
}

// pngDataURI inlines a PNG as a data URI so the report stays viewable fully
// offline. Returns the empty string for missing images.
func pngDataURI(img []byte) template.URL {
	if len(img) == 0 {
		return ""
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img))
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Survey Report - {{.List.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { border-bottom: 2px solid #4a7c59; padding-bottom: 0.3em; }
h2 { color: #4a7c59; margin-top: 1.5em; }
table { border-collapse: collapse; margin: 0.5em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #eef4ef; }
.meta td { border: none; padding: 0.15em 0.8em 0.15em 0; }
.rare { color: #a0522d; font-weight: bold; }
img.chart { max-width: 640px; display: block; margin: 0.5em 0; }
</style>
</head>
<body>
<h1>{{.List.Name}}</h1>
<table class="meta">
<tr><td>Date</td><td>{{.List.Date}}</td></tr>
<tr><td>Start time</td><td>{{.List.StartTime}}</td></tr>
<tr><td>Location</td><td>{{.List.Location.Name}}{{if .List.Location.City}}, {{.List.Location.City}}{{end}}</td></tr>
<tr><td>Status</td><td>{{.List.Status}}</td></tr>
{{if .List.EndTime}}<tr><td>End time</td><td>{{.List.EndTime}}</td></tr>{{end}}
</table>

<h2>Summary</h2>
<table class="meta">
<tr><td>Unique species</td><td>{{.Summary.Species.UniqueKeys}}</td></tr>
<tr><td>Total individuals</td><td>{{.Summary.Species.TotalCount}}</td></tr>
<tr><td>Rare species</td><td>{{.Summary.RareSpeciesCount}}</td></tr>
<tr><td>Observation span</td><td>{{.Summary.Duration}}</td></tr>
{{if .Summary.Peak}}<tr><td>Peak activity</td><td>{{.Summary.Peak.Label}} ({{.Summary.Peak.UniqueSpecies}} species)</td></tr>{{end}}
</table>

<h2>Species</h2>
{{if .SpeciesChartURI}}<img class="chart" src="{{.SpeciesChartURI}}" alt="Species distribution">{{end}}
<table>
<tr><th>Common name</th><th>Scientific name</th><th>Count</th></tr>
{{range .Summary.Species.Entries}}
<tr><td{{if .IsRare}} class="rare"{{end}}>{{.Name}}</td><td><i>{{.ScientificName}}</i></td><td>{{.Count}}</td></tr>
{{end}}
</table>

<h2>Families</h2>
<table>
<tr><th>Family</th><th>Count</th></tr>
{{range .Summary.Families.Entries}}
<tr><td>{{.Name}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>

{{if .Summary.RareSpecies}}
<h2>Rare sightings</h2>
<ul>
{{range .Summary.RareSpecies}}<li class="rare">{{.}}</li>
{{end}}</ul>
{{end}}

{{if .Summary.Intervals}}
<h2>Activity by interval</h2>
{{if .IntervalsChartURI}}<img class="chart" src="{{.IntervalsChartURI}}" alt="Activity by 30 minute interval">{{else}}
<table>
<tr><th>Interval</th><th>Species</th><th>Individuals</th><th>Most seen</th></tr>
{{range .Summary.Intervals}}
<tr><td>{{.Label}}</td><td>{{.UniqueSpecies}}</td><td>{{.TotalCount}}</td><td>{{.TopSpecies}} ({{.TopSpeciesCount}})</td></tr>
{{end}}
</table>
{{end}}
{{end}}

</body>
</html>
`))
