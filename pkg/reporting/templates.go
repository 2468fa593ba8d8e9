/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template of the energy profile page.
*/

package reporting

// profileTemplate renders a figure as two side-by-side pie charts.
const profileTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: #f4f6f8;
            color: #333;
        }

        .container { max-width: 1400px; margin: 0 auto; padding: 20px; }

        .header {
            background: #fff;
            border-radius: 12px;
            padding: 24px;
            margin-bottom: 24px;
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
            text-align: center;
        }

        .header h1 { color: #2d3748; font-size: 2rem; margin-bottom: 8px; }
        .header p { color: #718096; }

        .charts-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(500px, 1fr));
            gap: 24px;
            margin-bottom: 24px;
        }

        .chart-container {
            background: #fff;
            border-radius: 12px;
            padding: 24px;
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
        }

        .chart-container h2 { color: #4a5568; font-size: 1.3rem; text-align: center; }
        .chart-container .unit { color: #718096; text-align: center; margin-bottom: 16px; }
        .chart-wrapper { position: relative; height: 360px; }
        .empty { color: #a0aec0; text-align: center; padding: 140px 0; }

        table.slices { width: 100%; margin-top: 16px; border-collapse: collapse; }
        table.slices td { padding: 4px 8px; border-bottom: 1px solid #edf2f7; }
        table.slices td.num { text-align: right; font-variant-numeric: tabular-nums; }

        .notes { margin-top: 12px; color: #718096; font-size: 0.9rem; }
        .warnings {
            background: #fff5f5;
            border-left: 4px solid #e53e3e;
            border-radius: 8px;
            padding: 16px 24px;
            margin-bottom: 24px;
        }
        .footer { color: #a0aec0; text-align: center; font-size: 0.85rem; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <p>{{.PackageName}} on {{.EmulatorID}} | generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
        </div>

        {{if .Warnings}}
        <div class="warnings">
            <h3>Warnings</h3>
            <ul>
                {{range .Warnings}}<li class="warning">{{.}}</li>{{end}}
            </ul>
        </div>
        {{end}}

        <div class="charts-grid">
            {{range .Charts}}
            <div class="chart-container panel" id="{{.ID}}">
                <h2>{{.Panel.Title}}</h2>
                <div class="unit">{{.Panel.Unit}}</div>
                {{if .Panel.Slices}}
                <div class="chart-wrapper">
                    <canvas id="{{.ID}}-chart"></canvas>
                </div>
                <table class="slices">
                    {{$total := .Total}}
                    {{range .Panel.Slices}}
                    <tr class="slice">
                        <td>{{.Label}}</td>
                        <td class="num">{{printf "%.4g" .Value}}</td>
                        <td class="num">{{percent .Value $total | printf "%.1f"}}%</td>
                    </tr>
                    {{end}}
                </table>
                {{else}}
                <div class="empty">no data</div>
                {{end}}
                {{if .Panel.Notes}}
                <ul class="notes">
                    {{range .Panel.Notes}}<li class="note">{{.}}</li>{{end}}
                </ul>
                {{end}}
            </div>
            {{end}}
        </div>

        <div class="footer">
            <p>session {{.SessionID}}</p>
        </div>
    </div>

    <script>
        if (window.Chart) {
            Chart.defaults.font.family = "'Segoe UI', Tahoma, Geneva, Verdana, sans-serif";
            Chart.defaults.color = '#4a5568';
            {{range .Charts}}{{if .Panel.Slices}}
            new Chart(document.getElementById({{printf "%s-chart" .ID}}), {{.Config}});
            {{end}}{{end}}
        }
    </script>
</body>
</html>`
