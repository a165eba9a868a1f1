package render

import "time"

// TradeDateLayout is the display layout for trade timestamps.
const TradeDateLayout = "02/01/2006, 03:04 pm"

var tradeDateInputs = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// FormatTradeDate reformats a trade timestamp for display. Strings in an
// unrecognised layout are returned unchanged.
func FormatTradeDate(s string) string {
	for _, layout := range tradeDateInputs {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TradeDateLayout)
		}
	}
	return s
}
