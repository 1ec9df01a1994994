package engine

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatNaira renders whole Naira with thousands grouping, e.g. 1000 -> "₦1,000".
func FormatNaira(amount int) string {
	p := message.NewPrinter(language.English)
	if amount < 0 {
		return "-₦" + p.Sprintf("%d", -amount)
	}
	return "₦" + p.Sprintf("%d", amount)
}
