// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sweepplot renders sweep curves as charts: bandwidth versus
// working-set size with knee and cache-theory annotations, and
// pointer-chase latency versus working-set size.
//
// The x axis is logarithmic with power-of-two ticks labeled in IEC
// units, since sweeps step in powers of two. Knee positions come from
// the knee package; this package only draws what it is given.
package sweepplot

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/memsweep/sweepstat/knee"
	"github.com/memsweep/sweepstat/sweepfmt"
	"github.com/memsweep/sweepstat/sweepunit"
)

// Options configures a chart.
type Options struct {
	// Title overrides the default chart title.
	Title string

	// CPU is appended to the title when non-empty.
	CPU string

	// Knees are drawn as dashed vertical rules at each knee's
	// one-array x position, labeled with the classification.
	Knees []knee.Classification

	// Hierarchy draws faint theory rules at each configured cache
	// size divided by Multiplier (cache bytes converted to the
	// equivalent one-array position). The zero Hierarchy draws
	// nothing.
	Hierarchy knee.Hierarchy

	// Multiplier is the kernel's array multiplier; zero defaults
	// to 1.
	Multiplier float64

	// IncludeL1Theory also draws the L1 theory rule. L2 and LLC
	// only is the cleaner default: the L1 transition usually sits
	// below the first sweep step.
	IncludeL1Theory bool
}

// Bandwidth builds a bandwidth-vs-working-set-size chart for one
// kernel's sweep, sorted by increasing size.
func Bandwidth(kernel string, pts []sweepfmt.SweepPoint, o Options) (*plot.Plot, error) {
	if len(pts) == 0 {
		return nil, fmt.Errorf("no sweep points for kernel %q", kernel)
	}

	xys := make(plotter.XYs, len(pts))
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for i, pt := range pts {
		xys[i] = plotter.XY{X: float64(pt.Bytes), Y: pt.BandwidthGBs}
		ymin = math.Min(ymin, pt.BandwidthGBs)
		ymax = math.Max(ymax, pt.BandwidthGBs)
	}

	pl := plot.New()
	pl.Title.Text = title(o, fmt.Sprintf("STREAM Bandwidth vs Working-Set Size (%s)", kernel))
	pl.X.Label.Text = "Working-set size"
	pl.Y.Label.Text = "Bandwidth (GB/s)"
	pl.X.Scale = plot.LogScale{}
	pl.X.Tick.Marker = pow2Ticks{}
	pl.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(1.8)
	pl.Add(line, points)
	pl.Legend.Add("measured", line, points)
	pl.Legend.Top = true

	mult := o.Multiplier
	if mult <= 0 {
		mult = 1
	}
	addTheoryRules(pl, o, mult, ymin, ymax)
	addKneeRules(pl, o.Knees, ymin, ymax)

	return pl, nil
}

func title(o Options, def string) string {
	t := o.Title
	if t == "" {
		t = def
	}
	if o.CPU != "" {
		t += "\nCPU: " + o.CPU
	}
	return t
}

// addTheoryRules draws dotted rules at the configured cache sizes,
// converted to one-array x positions.
func addTheoryRules(pl *plot.Plot, o Options, mult, ymin, ymax float64) {
	theory := []struct {
		size int64
		on   bool
	}{
		{o.Hierarchy.L1, o.IncludeL1Theory},
		{o.Hierarchy.L2, true},
		{o.Hierarchy.LLC, true},
	}
	style := draw.LineStyle{
		Color:  color.NRGBA{0x1f, 0x77, 0xb4, 0x60},
		Width:  vg.Points(1),
		Dashes: []vg.Length{vg.Points(1), vg.Points(3)},
	}
	for _, t := range theory {
		if !t.on || t.size <= 0 {
			continue
		}
		pl.Add(vrule(float64(t.size)/mult, ymin, ymax, style))
	}
}

// addKneeRules draws dashed rules and labels at each retained knee.
func addKneeRules(pl *plot.Plot, knees []knee.Classification, ymin, ymax float64) {
	style := draw.LineStyle{
		Color:  color.NRGBA{0, 0, 0, 0xa6},
		Width:  vg.Points(1.2),
		Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
	}
	var xys plotter.XYs
	var texts []string
	for _, c := range knees {
		pl.Add(vrule(c.Knee.X, ymin, ymax, style))
		xys = append(xys, plotter.XY{X: c.Knee.X, Y: ymax})
		texts = append(texts, c.String())
	}
	if len(xys) == 0 {
		return
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		// Only possible for mismatched lengths, which we control.
		panic(err)
	}
	pl.Add(labels)
}

// vrule builds a vertical rule spanning the data's y extent.
func vrule(x, ymin, ymax float64, style draw.LineStyle) *plotter.Line {
	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: ymin}, {X: x, Y: ymax}})
	if err != nil {
		panic(err)
	}
	line.LineStyle = style
	return line
}

// pow2Ticks marks powers of two with IEC labels, thinning to at most
// ten labeled ticks.
type pow2Ticks struct{}

func (pow2Ticks) Ticks(min, max float64) []plot.Tick {
	if min <= 0 || max <= min {
		return nil
	}
	lo := int(math.Floor(math.Log2(min)))
	hi := int(math.Ceil(math.Log2(max)))
	var ticks []plot.Tick
	for p := lo; p <= hi; p++ {
		v := math.Pow(2, float64(p))
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: sweepunit.FormatBytes(int64(v))})
	}
	stride := (len(ticks) + 9) / 10
	if stride > 1 {
		for i := range ticks {
			if i%stride != 0 {
				ticks[i].Label = ""
			}
		}
	}
	return ticks
}

// SavePNG renders pl to a PNG file at the given size in centimeters.
func SavePNG(pl *plot.Plot, path string, widthCm, heightCm float64, dpi int) error {
	canvas := vgimg.PngCanvas{Canvas: vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthCm)*vg.Centimeter, vg.Length(heightCm)*vg.Centimeter),
		vgimg.UseDPI(dpi),
		vgimg.UseBackgroundColor(color.White),
	)}
	pl.Draw(draw.New(canvas))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := canvas.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
