package reconcile

import "regexp"

// Structural rules per identifier scheme. Each rule is purely lexical and
// checked independently of any other record field.
var formatRules = map[IdentifierType]*regexp.Regexp{
	// 2 uppercase letters + 9 alphanumerics + 1 check digit.
	TypeISIN: regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`),

	// 8 alphanumerics + 1 check digit.
	TypeCUSIP: regexp.MustCompile(`^[A-Z0-9]{8}[0-9]$`),

	// 6 alphanumerics + 1 check digit.
	TypeSEDOL: regexp.MustCompile(`^[A-Z0-9]{6}[0-9]$`),

	// Literal "BBG" prefix + 9 alphanumerics.
	TypeBloombergID: regexp.MustCompile(`^BBG[A-Z0-9]{9}$`),

	// Literal "RIC:" prefix + 2-10 alphanumerics or dots.
	TypeReutersID: regexp.MustCompile(`^RIC:[A-Za-z0-9.]{2,10}$`),

	// 1-15 characters from the exchange ticker alphabet.
	TypeTicker: regexp.MustCompile(`^[A-Z0-9.\-]{1,15}$`),

	// 18 alphanumerics + 2 check digits.
	TypeLEI: regexp.MustCompile(`^[A-Z0-9]{18}[0-9]{2}$`),

	// 8 or 11 characters: bank, country, location, optional branch.
	TypeBIC:   regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`),
	TypeSWIFT: regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`),
}

// ValidateIdentifier checks the lexical format of a single identifier value
// against the structural rule for its declared type. Types outside the rule
// table pass unchecked, which keeps the scheme set open for downstream
// extensions. A failure is a field-level error for the caller to
// accumulate; it never aborts a batch.
func ValidateIdentifier(t IdentifierType, value string) error {
	rule, ok := formatRules[t]
	if !ok {
		return nil
	}
	if !rule.MatchString(value) {
		return FieldError{
			Field:   "identifier." + string(t),
			Message: "value " + value + " does not match " + string(t) + " format",
		}
	}
	return nil
}
