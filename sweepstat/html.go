// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepstat

import (
	"io"

	"github.com/google/safehtml/template"
	"github.com/memsweep/sweepstat/knee"
)

var htmlTemplate = template.Must(template.New("report").ParseFromTrustedTemplate(template.MakeTrustedTemplate(`
<h2>Aggregated sweep{{if .CPU}} ({{.CPU}}){{end}}</h2>
<table class='sweepstat'>
<thead><tr>{{range .Columns}}<th>{{.}}{{end}}</tr></thead>
<tbody>
{{range .Rows -}}
<tr>{{range .}}<td>{{.}}{{end}}</tr>
{{end -}}
</tbody>
</table>
{{if .Kernels}}
<h2>Detected drops</h2>
{{range .Kernels}}
<h3>{{.Kernel}}</h3>
{{if .Knees}}<ul>
{{range .Knees}}<li>{{.Position}}: {{.Text}}</li>
{{end}}</ul>
{{else}}<p>no significant drops detected</p>
{{end}}
{{end}}
{{end}}
`)))

type htmlReport struct {
	CPU     string
	Columns []string
	Rows    [][]string
	Kernels []htmlKernel
}

type htmlKernel struct {
	Kernel string
	Knees  []htmlKnee
}

type htmlKnee struct {
	Position string
	Text     string
}

// FormatHTML writes the aggregated points, and optionally per-kernel
// knee classifications, as an HTML fragment. The caller supplies the
// page around it.
func FormatHTML(w io.Writer, res *Result, knees map[string][]knee.Classification) error {
	data := htmlReport{
		CPU:     res.Run.Metadata.Platform.CPUModel,
		Columns: tableColumns,
	}
	for _, p := range res.Points {
		data.Rows = append(data.Rows, p.row())
	}
	for _, kernel := range res.Run.Kernels() {
		cs, ok := knees[kernel]
		if !ok {
			continue
		}
		hk := htmlKernel{Kernel: kernel}
		for _, c := range cs {
			hk.Knees = append(hk.Knees, htmlKnee{
				Position: formatEffective(c.EffectiveBytes),
				Text:     c.String(),
			})
		}
		data.Kernels = append(data.Kernels, hk)
	}
	return htmlTemplate.Execute(w, data)
}
