package commerce

import (
	"fmt"
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format renders money for display in the given language, e.g. "$ 12.99".
// Unknown currency codes are rendered as "12.99 XXX".
func (m Money) Format(lang LanguageCode) string {
	amount, err := strconv.ParseFloat(m.Amount, 64)
	if err != nil {
		return fmt.Sprintf("%s %s", m.Amount, m.CurrencyCode)
	}

	unit, err := currency.ParseISO(m.CurrencyCode)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, m.CurrencyCode)
	}

	tag := language.English
	if lang == LanguageES {
		tag = language.Spanish
	}

	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
