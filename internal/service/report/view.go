package report

import (
	"html/template"
	"math"
	"strings"
	"time"

	"AlgoReport/internal/domain/models"

	"github.com/shopspring/decimal"
)

type symbolView struct {
	Symbol     string
	Source     string
	Traffic    string
	Badge      string
	Color      string
	Error      string
	Close      string
	Entry      string
	Exit       string
	Stop       string
	R1, R2     string
	S1, S2     string
	RSI        string
	EMA20      string
	EMA50      string
	ATR        string
	BarTime    string
	Conclusion string
	Chart      string
}

type pageView struct {
	Title     string
	RunID     string
	Generated string
	Interval  string
	CSV       string
	Green     int
	Amber     int
	Red       int
	Failed    int
	Symbols   []symbolView
}

var funcs = template.FuncMap{
	"lower": strings.ToLower,
}

func newPageView(run models.RunResult, art models.ReportArtifact) pageView {
	v := pageView{
		Title:     "Report " + art.Stamp,
		RunID:     run.ID,
		Generated: run.FinishedAt.UTC().Format(time.RFC3339),
		Interval:  run.Params.Interval,
		CSV:       "report-" + art.Stamp + ".csv",
	}
	for _, o := range run.Outcomes {
		sv := symbolView{Symbol: o.Symbol.String(), Source: o.Kind.String()}
		if !o.OK() {
			sv.Error = o.ErrorMessage()
			v.Failed++
			v.Symbols = append(v.Symbols, sv)
			continue
		}

		s := o.Signal
		snap := s.Snapshot
		sv.Traffic = string(s.Traffic)
		sv.Badge = s.Traffic.Emoji()
		sv.Color = trafficColor(s.Traffic)
		sv.Close = FormatPrice(snap.Close)
		sv.Entry = FormatPrice(s.Entry)
		sv.Exit = FormatPrice(s.Exit)
		sv.Stop = FormatPrice(s.Stop)
		sv.R1, sv.R2 = FormatPrice(snap.R1), FormatPrice(snap.R2)
		sv.S1, sv.S2 = FormatPrice(snap.S1), FormatPrice(snap.S2)
		sv.RSI = FormatPrice(snap.RSI14)
		sv.EMA20 = FormatPrice(snap.EMA20)
		sv.EMA50 = FormatPrice(snap.EMA50)
		sv.ATR = FormatPrice(snap.ATR14)
		sv.BarTime = snap.Timestamp.UTC().Format("2006-01-02 15:04 MST")
		sv.Conclusion = s.Conclusion
		sv.Chart = art.Charts[o.Symbol]

		switch s.Traffic {
		case models.TrafficGreen:
			v.Green++
		case models.TrafficAmber:
			v.Amber++
		default:
			v.Red++
		}
		v.Symbols = append(v.Symbols, sv)
	}
	return v
}

// FormatPrice renders v with two decimals, or "-" when undefined.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func trafficColor(t models.Traffic) string {
	switch t {
	case models.TrafficGreen:
		return "#2e7d32"
	case models.TrafficAmber:
		return "#ef6c00"
	default:
		return "#c62828"
	}
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; margin: 18px; }
    h2 { margin: 10px 0 16px; }
    section { border: 1px solid #e0e0e0; border-radius: 8px; padding: 12px; margin-bottom: 16px; }
    .row { display: flex; gap: 16px; flex-wrap: wrap; }
    .col { flex: 1; min-width: 320px; }
    table { width: 100%; border-collapse: collapse; }
    th, td { padding: 6px 8px; border-bottom: 1px solid #eee; text-align: left; }
    th { width: 160px; color: #555; }
    .summary td, .summary th { width: auto; }
    .error { color: #c62828; }
    img { max-width: 100%; border: 1px solid #ddd; border-radius: 6px; }
    .meta { color: #777; font-size: 0.9rem; }
  </style>
</head>
<body>
  <h2>{{.Title}}</h2>
  <p class="meta">run {{.RunID}} · generated {{.Generated}}{{if .Interval}} · interval {{.Interval}}{{end}} · <a href="{{.CSV}}">csv</a></p>

  <table class="summary">
    <tr><th>Symbol</th><th>Signal</th><th>Close</th><th>Entry</th><th>Exit</th><th>Stop</th><th>Conclusion</th></tr>
    {{range .Symbols}}
    <tr id="row-{{lower .Symbol}}">
      <td><a href="#{{.Symbol}}">{{.Symbol}}</a></td>
      {{if .Error}}<td class="error">ERROR</td><td colspan="5" class="error">{{.Error}}</td>
      {{else}}<td style="color:{{.Color}};font-weight:600;">{{.Badge}} {{.Traffic}}</td><td>{{.Close}}</td><td>{{.Entry}}</td><td>{{.Exit}}</td><td>{{.Stop}}</td><td>{{.Conclusion}}</td>{{end}}
    </tr>
    {{end}}
  </table>
  <p class="meta">{{.Green}} green · {{.Amber}} amber · {{.Red}} red · {{.Failed}} failed</p>

  {{range .Symbols}}
  <section id="{{.Symbol}}">
    {{if .Error}}
    <h3>{{.Symbol}}: <span class="error">ERROR</span></h3>
    <p>{{.Error}}</p>
    {{else}}
    <h3>{{.Symbol}}: <span style="font-size:1.4rem;">{{.Badge}}</span></h3>
    <div class="row">
      <div class="col">
        <table>
          <tr><th>Last bar</th><td>{{.BarTime}}</td></tr>
          <tr><th>Ideal entry</th><td>{{.Entry}}</td></tr>
          <tr><th>Suggested exit</th><td>{{.Exit}}</td></tr>
          <tr><th>Stop loss</th><td>{{.Stop}}</td></tr>
          <tr><th>R1 / R2</th><td>{{.R1}} / {{.R2}}</td></tr>
          <tr><th>S1 / S2</th><td>{{.S1}} / {{.S2}}</td></tr>
          <tr><th>RSI(14)</th><td>{{.RSI}}</td></tr>
          <tr><th>EMA20 / EMA50</th><td>{{.EMA20}} / {{.EMA50}}</td></tr>
          <tr><th>ATR(14)</th><td>{{.ATR}}</td></tr>
        </table>
        <p><strong>Conclusion:</strong> {{.Conclusion}}</p>
        <p style="color:{{.Color}};font-weight:600;">Signal: {{.Badge}} {{.Traffic}}</p>
      </div>
      {{if .Chart}}
      <div class="col">
        <img src="./{{.Chart}}" alt="chart {{.Symbol}}" />
      </div>
      {{end}}
    </div>
    {{end}}
  </section>
  {{end}}
</body>
</html>
`
