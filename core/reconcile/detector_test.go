package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIdentifierType(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  IdentifierType
		none  bool
	}{
		{name: "ISIN", value: "US0378331005", want: TypeISIN},
		{name: "CUSIP", value: "037833100", want: TypeCUSIP},
		{name: "SEDOL", value: "B0YQ5W0", want: TypeSEDOL},
		{name: "Bloomberg ID wins over ISIN shape", value: "BBG000B9XRY4", want: TypeBloombergID},
		{name: "Reuters RIC", value: "RIC:AAPL.O", want: TypeReutersID},
		{name: "ticker", value: "BRK-B", want: TypeTicker},

		// Overlap tie-breaks: the fixed order decides, not the "best" fit.
		{name: "9 alphanumerics ending in digit is CUSIP not ticker", value: "ABCDEFGH1", want: TypeCUSIP},
		{name: "7 alphanumerics ending in digit is SEDOL not ticker", value: "ABCDEF1", want: TypeSEDOL},

		// LEI and BIC are declared-type only. An LEI value happens to fit
		// no security scheme at its length, so detection finds nothing.
		{name: "LEI value is not inferred", value: "529900T8BM49AURSDO55", none: true},

		{name: "lowercase value matches nothing", value: "us0378331005", none: true},
		{name: "empty value matches nothing", value: "", none: true},
		{name: "free text matches nothing", value: "not an identifier", none: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectIdentifierType(tt.value)
			if tt.none {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
