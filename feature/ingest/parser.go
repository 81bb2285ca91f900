package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"refdata-manager/core/reconcile"
	"refdata-manager/core/utils"
)

// Format identifies how a vendor batch file is encoded.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DetectFormat infers the file format from the object name extension.
func DetectFormat(name string) (Format, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(strings.ToLower(name), ".json"):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("cannot detect format of %q (expected .csv or .json)", name)
	}
}

// Parse reads a vendor batch file into incoming records. Kind and source are
// batch-level: vendor files never mix kinds or vendors.
func Parse(r io.Reader, format Format, kind reconcile.Kind, source string) ([]reconcile.IncomingRecord, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r, kind, source)
	case FormatJSON:
		return parseJSON(r, kind, source)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// csvIdentifierColumns maps CSV header names to identifier schemes. A vendor
// file carries one column per scheme it reports.
var csvIdentifierColumns = map[string]reconcile.IdentifierType{
	"isin":        reconcile.TypeISIN,
	"cusip":       reconcile.TypeCUSIP,
	"sedol":       reconcile.TypeSEDOL,
	"bloombergid": reconcile.TypeBloombergID,
	"reutersid":   reconcile.TypeReutersID,
	"ticker":      reconcile.TypeTicker,
	"lei":         reconcile.TypeLEI,
	"bic":         reconcile.TypeBIC,
	"swift":       reconcile.TypeSWIFT,
}

// csvAttributeColumns maps lowercased CSV header names to the canonical
// attribute names the engine understands.
var csvAttributeColumns = map[string]string{
	"name":             reconcile.AttrName,
	"status":           reconcile.AttrStatus,
	"securitytype":     reconcile.AttrSecurityType,
	"currency":         reconcile.AttrCurrency,
	"market":           reconcile.AttrMarket,
	"issuer":           reconcile.AttrIssuer,
	"isbasket":         reconcile.AttrIsBasket,
	"counterpartytype": reconcile.AttrCounterpartyType,
	"country":          reconcile.AttrCountry,
	"sector":           reconcile.AttrSector,
}

func parseCSV(r io.Reader, kind reconcile.Kind, source string) ([]reconcile.IncomingRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []reconcile.IncomingRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		record := reconcile.IncomingRecord{
			Kind:       kind,
			Source:     source,
			Attributes: map[string]string{},
		}
		for i, cell := range row {
			if i >= len(columns) {
				break
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			col := columns[i]
			switch {
			case col == "externalid":
				record.ExternalID = value
			case col == "identifier":
				// Untyped identifier; the engine infers the scheme.
				record.Identifiers = append(record.Identifiers,
					reconcile.RecordIdentifier{Value: value})
			case col == "constituents":
				for _, ref := range strings.Split(value, ";") {
					ref = strings.TrimSpace(ref)
					if ref != "" {
						record.Constituents = append(record.Constituents,
							reconcile.RecordIdentifier{Value: ref})
					}
				}
			default:
				if idType, ok := csvIdentifierColumns[col]; ok {
					record.Identifiers = append(record.Identifiers,
						reconcile.RecordIdentifier{Type: idType, Value: value})
				} else if attr, ok := csvAttributeColumns[col]; ok {
					record.Attributes[attr] = value
				}
				// Unknown columns are vendor noise and skipped.
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// jsonRecord is the wire shape of one record in a JSON vendor file. Attribute
// values arrive as strings, numbers, or booleans depending on the vendor.
type jsonRecord struct {
	ExternalID   string                       `json:"externalId"`
	Attributes   map[string]any               `json:"attributes"`
	Identifiers  []reconcile.RecordIdentifier `json:"identifiers"`
	Constituents []reconcile.RecordIdentifier `json:"constituents"`
}

func parseJSON(r io.Reader, kind reconcile.Kind, source string) ([]reconcile.IncomingRecord, error) {
	var raw []jsonRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode json batch: %w", err)
	}

	records := make([]reconcile.IncomingRecord, 0, len(raw))
	for _, jr := range raw {
		record := reconcile.IncomingRecord{
			ExternalID:   jr.ExternalID,
			Kind:         kind,
			Source:       source,
			Attributes:   map[string]string{},
			Identifiers:  jr.Identifiers,
			Constituents: jr.Constituents,
		}
		for name, value := range jr.Attributes {
			s := utils.ToString(value)
			if s != "" {
				record.Attributes[name] = s
			}
		}
		records = append(records, record)
	}
	return records, nil
}
