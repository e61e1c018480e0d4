package catalog

import "strings"

// Catalog lists the reference values callers can offer when building
// collection and report requests. Agents accept free text; these lists
// exist for pickers and bulk tooling, not validation.
type Catalog struct {
	Sectors           []string `json:"sectors"`
	Countries         []string `json:"countries"`
	FinancialProducts []string `json:"financial_products"`
}

var sectors = []string{
	"Healthcare",
	"Technology",
	"Transportation",
	"Industrial Equipment",
	"Energy",
	"Construction",
	"Agriculture",
	"Retail",
	"Financial Services",
	"Manufacturing",
}

var countries = []string{
	"France",
	"Germany",
	"UK",
	"US",
	"China",
	"Japan",
	"Italy",
	"Spain",
	"Brazil",
	"India",
}

var financialProducts = []string{
	"Leasing",
	"SALB (Sale and Lease Back)",
	"Loan",
	"Rental",
	"Asset Finance",
}

// Default returns a copy so callers cannot mutate the reference lists.
func Default() Catalog {
	return Catalog{
		Sectors:           append([]string(nil), sectors...),
		Countries:         append([]string(nil), countries...),
		FinancialProducts: append([]string(nil), financialProducts...),
	}
}

// KnownSector reports whether the sector appears in the reference list.
func KnownSector(sector string) bool {
	return containsFold(sectors, sector)
}

// KnownCountry reports whether the country appears in the reference list.
func KnownCountry(country string) bool {
	return containsFold(countries, country)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
