package report

import (
	"fmt"
	"time"

	"AlgoReport/internal/domain/models"

	"github.com/gocarina/gocsv"
)

// csvRow is one line of the conclusions export; prices use the report's two-decimal format.
type csvRow struct {
	Symbol     string `csv:"symbol"`
	Source     string `csv:"source"`
	Traffic    string `csv:"traffic"`
	BarTime    string `csv:"bar_time"`
	Close      string `csv:"close"`
	Entry      string `csv:"entry"`
	Exit       string `csv:"exit"`
	Stop       string `csv:"stop"`
	R1         string `csv:"r1"`
	R2         string `csv:"r2"`
	S1         string `csv:"s1"`
	S2         string `csv:"s2"`
	RSI14      string `csv:"rsi14"`
	EMA20      string `csv:"ema20"`
	EMA50      string `csv:"ema50"`
	ATR14      string `csv:"atr14"`
	Conclusion string `csv:"conclusion"`
	Error      string `csv:"error"`
}

func newCSVRows(run models.RunResult) []*csvRow {
	rows := make([]*csvRow, 0, len(run.Outcomes))
	for _, o := range run.Outcomes {
		row := &csvRow{Symbol: o.Symbol.String(), Source: o.Kind.String(), Error: o.ErrorMessage()}
		if o.OK() {
			s := o.Signal
			snap := s.Snapshot
			row.Traffic = string(s.Traffic)
			row.BarTime = snap.Timestamp.UTC().Format(time.RFC3339)
			row.Close = FormatPrice(snap.Close)
			row.Entry = FormatPrice(s.Entry)
			row.Exit = FormatPrice(s.Exit)
			row.Stop = FormatPrice(s.Stop)
			row.R1, row.R2 = FormatPrice(snap.R1), FormatPrice(snap.R2)
			row.S1, row.S2 = FormatPrice(snap.S1), FormatPrice(snap.S2)
			row.RSI14 = FormatPrice(snap.RSI14)
			row.EMA20 = FormatPrice(snap.EMA20)
			row.EMA50 = FormatPrice(snap.EMA50)
			row.ATR14 = FormatPrice(snap.ATR14)
			row.Conclusion = s.Conclusion
		}
		rows = append(rows, row)
	}
	return rows
}

func marshalCSV(run models.RunResult) ([]byte, error) {
	rows := newCSVRows(run)
	b, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return b, nil
}
