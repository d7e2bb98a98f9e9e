// Package display holds the derived display formatting for dashboard rows:
// currency prices, compact market caps, and the up/down change badge.
package display

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Price formats a price in US dollars with two decimals and thousands
// grouping: 1234.5 -> "$1,234.50".
func Price(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// MarketCap formats a market cap in compact notation:
// 1_500_000 -> "$1.5M", 2_300_000_000 -> "$2.3B".
func MarketCap(v float64) string {
	abs := math.Abs(v)

	var scaled float64
	var unit string
	switch {
	case abs >= 1e12:
		scaled, unit = v/1e12, "T"
	case abs >= 1e9:
		scaled, unit = v/1e9, "B"
	case abs >= 1e6:
		scaled, unit = v/1e6, "M"
	case abs >= 1e3:
		scaled, unit = v/1e3, "K"
	default:
		return printer.Sprintf("$%.0f", v)
	}

	s := strconv.FormatFloat(scaled, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return "$" + s + unit
}

// Badge is the rendered 24-hour change indicator.
type Badge struct {
	Text string `json:"text"`
	Up   bool   `json:"up"`
}

// Change renders the change badge: -3.456 -> "↓ 3.46%" with Up=false,
// anything >= 0 -> "↑ x.xx%" with Up=true.
func Change(pct float64) Badge {
	up := pct >= 0
	arrow := "↑"
	if !up {
		arrow = "↓"
	}
	return Badge{
		Text: fmt.Sprintf("%s %.2f%%", arrow, math.Abs(pct)),
		Up:   up,
	}
}
