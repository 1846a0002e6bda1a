// Package query builds provider-specific search queries from a base product
// term and a target market.
package query

import (
	"strings"

	"golang.org/x/text/language"
)

// intentVocab holds per-market B2B intent vocabulary appended to the base
// term. Keys are lowercase market codes.
var intentVocab = map[string]string{
	"uk": "wholesale distributor stockist",
	"de": "großhandel vertrieb händler",
	"fr": "grossiste distributeur fournisseur",
	"nl": "groothandel distributeur leverancier",
	"be": "groothandel grossiste distributeur",
	"it": "grossista distributore fornitore",
	"es": "mayorista distribuidor proveedor",
}

// defaultVocab is the fallback template for markets outside the known set.
const defaultVocab = "wholesale distributor stockist"

// negativeTerms exclude manufacturer-signaling vocabulary from results.
// Optional pre-filter; classification remains the authoritative gate.
var negativeTerms = []string{"-factory", "-manufacturer", "-OEM"}

// SupportedMarkets returns the known market codes in stable order.
func SupportedMarkets() []string {
	return []string{"uk", "de", "fr", "nl", "be", "it", "es"}
}

// Normalize lowercases a market code and reports whether it is a
// syntactically valid region. Invalid codes still produce a usable value;
// the builder falls back to the default template for them.
func Normalize(market string) (string, bool) {
	code := strings.ToLower(strings.TrimSpace(market))
	if _, err := language.ParseRegion(code); err != nil {
		return code, false
	}
	return code, true
}

// Build turns a base term and market code into search queries. Pure and
// deterministic; an unknown market falls back to the default English
// template rather than erroring.
func Build(term, market string, withNegatives bool) []string {
	code, _ := Normalize(market)

	vocab, ok := intentVocab[code]
	if !ok {
		vocab = defaultVocab
	}

	parts := []string{strings.TrimSpace(term), vocab, strings.ToUpper(code)}
	if withNegatives {
		parts = append(parts, strings.Join(negativeTerms, " "))
	}

	return []string{strings.Join(parts, " ")}
}
