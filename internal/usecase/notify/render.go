package notify

import (
	"bytes"
	htmltemplate "html/template"
	"strconv"
	texttemplate "text/template"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
)

type Report struct {
	Subject  string
	HTMLBody string
	TextBody string
}

var funcs = map[string]any{
	"qty":  func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"date": pool.FormatDate,
}

var htmlReport = htmltemplate.Must(htmltemplate.New("report.html").Funcs(funcs).Parse(`<html><body><h1>🏊 Pool Maintenance Alert</h1>
{{- if .LowItems}}<h2>⚠️ Low Chemical Inventory</h2><ul>
{{- range .LowItems}}<li><strong>{{.Name}}:</strong> {{qty .QuantityOnHand}} {{.Unit}} (reorder at {{qty .ReorderThreshold}})</li>{{end -}}
</ul>{{end}}
{{- if .DueTasks}}<h2>📋 Tasks Due Soon</h2><ul>
{{- range .DueTasks}}<li><strong>{{.Name}}:</strong> Due {{date .NextDueDate}}</li>{{end -}}
</ul>{{end}}
{{- if and (not .LowItems) (not .DueTasks)}}<p>✓ All systems normal. No urgent actions required.</p>{{end -}}
</body></html>`))

var textReport = texttemplate.Must(texttemplate.New("report.txt").Funcs(funcs).Parse(`Pool Maintenance Alert
{{- if .LowItems}}

Low Chemical Inventory
{{- range .LowItems}}
- {{.Name}}: {{qty .QuantityOnHand}} {{.Unit}} (reorder at {{qty .ReorderThreshold}})
{{- end}}
{{- end}}
{{- if .DueTasks}}

Tasks Due Soon
{{- range .DueTasks}}
- {{.Name}}: due {{date .NextDueDate}}
{{- end}}
{{- end}}
{{- if and (not .LowItems) (not .DueTasks)}}

All systems normal. No urgent actions required.
{{- end}}
`))

// Render builds the e-mail for an alert. Item and task names are HTML-escaped.
func Render(alertName string, facts Facts) (Report, error) {
	var html, text bytes.Buffer
	if err := htmlReport.Execute(&html, facts); err != nil {
		return Report{}, errs.Wrap(err, "render html report")
	}
	if err := textReport.Execute(&text, facts); err != nil {
		return Report{}, errs.Wrap(err, "render text report")
	}
	return Report{
		Subject:  "Pool Alert: " + alertName,
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
