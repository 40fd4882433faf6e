package chart

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "Jan 2, 2006"

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders a tooltip price, e.g. "$1,234.56".
func FormatPrice(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// FormatAxis renders a gridline label rounded to whole units.
func FormatAxis(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// FormatDate renders a tooltip date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
