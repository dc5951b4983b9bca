// Package placeholder implements the bit-exact entity-placeholder naming
// convention shared by the deterministic parser, the lookup parser, and the
// featurizer's co-occurrence sub-model (spec.md §9 "Entity placeholder
// convention"): an entity name like "snips/datetime" becomes "%SNIPSDATETIME%".
package placeholder

import "strings"

// ForEntity returns the canonical "%UPPER_NO_PUNCT_NAME%" placeholder for an
// entity name.
func ForEntity(entityName string) string {
	return "%" + upperNoPunct(entityName) + "%"
}

// ForCooccurrence returns the upper-cased, no-punctuation, no-percent form of
// an entity name (e.g. "SNIPSDATETIME"). Nothing in this module calls it: the
// featurizer, including its co-occurrence sub-model, works from ForEntity
// placeholders.
func ForCooccurrence(entityName string) string {
	return upperNoPunct(entityName)
}

func upperNoPunct(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			// drop '/', '_', '-', spaces, and any other punctuation
		}
	}
	return b.String()
}
