package http

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"finvision/internal/core"
)

var printer = message.NewPrinter(language.English)

// formatDollars renders cents as a grouped dollar amount ("-$1,234.56").
func formatDollars(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + printer.Sprintf("%d", cents/100) + fmt.Sprintf(".%02d", cents%100)
}

// amountClass picks the table style for a signed amount.
func amountClass(m core.Money) string {
	if m.Cents < 0 {
		return "amount--negative"
	}
	return "amount--positive"
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
