/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: figure.go
Description: Energy profile figure model. A figure holds two side-by-side panels, the
breakdown by routine and the breakdown by hardware component, each a list of labelled slices.
*/

package reporting

import (
	"sort"
	"time"
)

// Panel titles.
const (
	RoutinePanelTitle   = "Breakdown by routine"
	ComponentPanelTitle = "Breakdown by component"
)

// Figure is a two-panel energy profile of one application.
type Figure struct {
	Title       string    `json:"title"`
	PackageName string    `json:"package_name"`
	EmulatorID  string    `json:"emulator_id"`
	SessionID   string    `json:"session_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Routine     *Panel    `json:"routine"`
	Component   *Panel    `json:"component"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// Panel is one chart of the figure.
type Panel struct {
	Title  string   `json:"title"`
	Unit   string   `json:"unit"`
	Slices []Slice  `json:"slices"`
	Notes  []string `json:"notes,omitempty"`
}

// Slice is one labelled share of a panel.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// NewFigure creates an empty figure titled after the package.
func NewFigure(packageName, emulatorID string) *Figure {
	return &Figure{
		Title:       packageName + " energy profile",
		PackageName: packageName,
		EmulatorID:  emulatorID,
		GeneratedAt: time.Now(),
		Routine:     &Panel{Title: RoutinePanelTitle},
		Component:   &Panel{Title: ComponentPanelTitle},
	}
}

// Panels returns the panels in display order.
func (f *Figure) Panels() []*Panel {
	return []*Panel{f.Routine, f.Component}
}

// Warn records a figure-level warning.
func (f *Figure) Warn(msg string) {
	f.Warnings = append(f.Warnings, msg)
}

// Add accumulates value into the slice labelled label.
func (p *Panel) Add(label string, value float64) {
	for i := range p.Slices {
		if p.Slices[i].Label == label {
			p.Slices[i].Value += value
			return
		}
	}
	p.Slices = append(p.Slices, Slice{Label: label, Value: value})
}

// Note records a panel-level remark, e.g. data that could not be attributed.
func (p *Panel) Note(msg string) {
	p.Notes = append(p.Notes, msg)
}

// Total sums every slice.
func (p *Panel) Total() float64 {
	var total float64
	for _, s := range p.Slices {
		total += s.Value
	}
	return total
}

// Sort orders slices by descending value, then label.
func (p *Panel) Sort() {
	sort.SliceStable(p.Slices, func(i, j int) bool {
		if p.Slices[i].Value != p.Slices[j].Value {
			return p.Slices[i].Value > p.Slices[j].Value
		}
		return p.Slices[i].Label < p.Slices[j].Label
	})
}

// Labels returns slice labels in order.
func (p *Panel) Labels() []string {
	out := make([]string, len(p.Slices))
	for i, s := range p.Slices {
		out[i] = s.Label
	}
	return out
}

// Values returns slice values in order.
func (p *Panel) Values() []float64 {
	out := make([]float64, len(p.Slices))
	for i, s := range p.Slices {
		out[i] = s.Value
	}
	return out
}
