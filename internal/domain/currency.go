package domain

// SupportedCurrencies maps the currency codes the bank supports to their
// display labels. Account creation and the exchange rate refresher both
// derive their currency sets from this table.
var SupportedCurrencies = map[string]string{
	"USD": "United States Dollar",
	"EUR": "Euro",
	"GBP": "British Pound",
	"JPY": "Japanese Yen",
	"NGN": "Nigerian Naira",
	"INR": "Indian Rupee",
}

// CurrencyLabel returns the display label for a currency code and whether
// the code is supported.
func CurrencyLabel(code string) (string, bool) {
	label, ok := SupportedCurrencies[code]
	return label, ok
}
