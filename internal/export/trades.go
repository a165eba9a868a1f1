package export

import (
	"bytes"
	"strconv"

	"github.com/gocarina/gocsv"

	"signal-dashboard/internal/models"
)

// tradeRow is one CSV line. Numbers are pre-formatted so they come out in
// their shortest form.
type tradeRow struct {
	EntryTime     string `csv:"Entry Time"`
	Position      string `csv:"Position"`
	Entry         string `csv:"Entry"`
	SL            string `csv:"SL"`
	TP            string `csv:"TP"`
	ExitTime      string `csv:"Exit Time"`
	Exit          string `csv:"Exit"`
	Reason        string `csv:"Reason"`
	PnL           string `csv:"P&L"`
	CumulativePnL string `csv:"Cumulative P&L"`
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TradesCSV renders trades with a header line, one line per trade in order.
func TradesCSV(trades []models.Trade) ([]byte, error) {
	rows := make([]*tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &tradeRow{
			EntryTime:     t.EntryTime,
			Position:      string(t.Position),
			Entry:         number(t.Entry),
			SL:            number(t.SL),
			TP:            number(t.TP),
			ExitTime:      t.ExitTime,
			Exit:          number(t.Exit),
			Reason:        string(t.Reason),
			PnL:           number(t.PnL),
			CumulativePnL: number(t.CumulativePnL),
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
