/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dashboard.go
Description: HTML rendering of energy profiles. Writes a self-contained page with one Chart.js
pie per panel next to a JSON copy of the figure.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Output file names written into the render directory.
const (
	HTMLFile = "energy_profile.html"
	JSONFile = "energy_profile.json"
	PNGFile  = "energy_profile.png"
	PDFFile  = "energy_profile.pdf"
)

// palette cycles over slices; pies with more slices reuse colours.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Renderer turns a figure into files under dir and returns the path to display.
type Renderer interface {
	Render(fig *Figure, dir string) (string, error)
}

// HTMLRenderer renders figures with html/template.
type HTMLRenderer struct {
	logger   *logrus.Logger
	template *template.Template
}

// pageData is the template view of a figure.
type pageData struct {
	*Figure
	Charts []chartView
}

// chartView is one panel ready for the template.
type chartView struct {
	ID     string
	Panel  *Panel
	Total  float64
	Config *ChartConfig
}

// ChartConfig is the Chart.js configuration of one pie.
type ChartConfig struct {
	Type    string                 `json:"type"`
	Data    ChartData              `json:"data"`
	Options map[string]interface{} `json:"options"`
}

// ChartData holds the labels and the single dataset of a pie.
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ChartDataset is one Chart.js dataset.
type ChartDataset struct {
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
}

// NewHTMLRenderer parses the page template.
func NewHTMLRenderer(logger *logrus.Logger) *HTMLRenderer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	funcs := template.FuncMap{
		"percent": func(v, total float64) float64 {
			if total == 0 {
				return 0
			}
			return v / total * 100
		},
	}
	return &HTMLRenderer{
		logger:   logger,
		template: template.Must(template.New("profile").Funcs(funcs).Parse(profileTemplate)),
	}
}

// Render writes the HTML page and the JSON figure into dir and returns the HTML path.
func (r *HTMLRenderer) Render(fig *Figure, dir string) (string, error) {
	if fig == nil {
		return "", fmt.Errorf("nothing to render")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	htmlPath := filepath.Join(dir, HTMLFile)
	if err := r.writeHTML(fig, htmlPath); err != nil {
		return "", err
	}
	if err := writeJSON(fig, filepath.Join(dir, JSONFile)); err != nil {
		return "", err
	}

	r.logger.WithFields(logrus.Fields{
		"package": fig.PackageName,
		"file":    htmlPath,
	}).Info("Energy profile rendered")
	return htmlPath, nil
}

func (r *HTMLRenderer) writeHTML(fig *Figure, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := r.template.Execute(file, newPageData(fig)); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

func writeJSON(fig *Figure, path string) error {
	data, err := json.MarshalIndent(fig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newPageData(fig *Figure) *pageData {
	data := &pageData{Figure: fig}
	for i, p := range fig.Panels() {
		if p == nil {
			continue
		}
		data.Charts = append(data.Charts, chartView{
			ID:     fmt.Sprintf("panel%d", i),
			Panel:  p,
			Total:  p.Total(),
			Config: pieChart(p),
		})
	}
	return data
}

// pieChart builds the Chart.js configuration of a panel.
func pieChart(p *Panel) *ChartConfig {
	colors := make([]string, len(p.Slices))
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return &ChartConfig{
		Type: "pie",
		Data: ChartData{
			Labels: p.Labels(),
			Datasets: []ChartDataset{{
				Data:            p.Values(),
				BackgroundColor: colors,
			}},
		},
		Options: map[string]interface{}{
			"responsive":          true,
			"maintainAspectRatio": false,
			"animation":           false,
			"plugins": map[string]interface{}{
				"legend": map[string]interface{}{"position": "bottom"},
			},
		},
	}
}
