package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount as a display string with Indonesian digit
// grouping, e.g. 1234567.89 -> "Rp 1.234.567,89". Reports keep raw numbers;
// this is only for display fields on dashboard payloads.
func FormatRupiah(amount float64) string {
	return rupiahPrinter.Sprintf("Rp %.2f", amount)
}
