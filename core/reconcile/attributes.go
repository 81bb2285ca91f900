package reconcile

import "strconv"

// attrAccessor pairs an explicit getter and setter for one named business
// attribute. The enumerated table replaces the original design's runtime
// reflection: every attribute the conflict policy can touch is declared
// here, and a name outside the table is a mapping error for that attribute
// only, never for the whole record.
type attrAccessor struct {
	get func(*Entity) string
	set func(*Entity, string)
}

// Attribute names as they appear on incoming records.
const (
	AttrName             = "name"
	AttrStatus           = "status"
	AttrSecurityType     = "securityType"
	AttrCurrency         = "currency"
	AttrMarket           = "market"
	AttrIssuer           = "issuer"
	AttrIsBasket         = "isBasket"
	AttrCounterpartyType = "counterpartyType"
	AttrCountry          = "country"
	AttrSector           = "sector"
)

var commonAttrs = map[string]attrAccessor{
	AttrName: {
		get: func(e *Entity) string { return e.Name },
		set: func(e *Entity, v string) { e.Name = v },
	},
	AttrStatus: {
		get: func(e *Entity) string { return e.Status },
		set: func(e *Entity, v string) { e.Status = v },
	},
}

var securityAttrs = map[string]attrAccessor{
	AttrSecurityType: {
		get: func(e *Entity) string { return e.SecurityType },
		set: func(e *Entity, v string) { e.SecurityType = v },
	},
	AttrCurrency: {
		get: func(e *Entity) string { return e.Currency },
		set: func(e *Entity, v string) { e.Currency = v },
	},
	AttrMarket: {
		get: func(e *Entity) string { return e.Market },
		set: func(e *Entity, v string) { e.Market = v },
	},
	AttrIssuer: {
		get: func(e *Entity) string { return e.Issuer },
		set: func(e *Entity, v string) { e.Issuer = v },
	},
	AttrIsBasket: {
		// An unset flag reads as empty, not "false": a cleared flag is
		// indistinguishable from a never-reported one, so only a truthy
		// report can raise it and only an outranking "false" lowers it.
		get: func(e *Entity) string {
			if !e.Basket {
				return ""
			}
			return strconv.FormatBool(true)
		},
		set: func(e *Entity, v string) { e.Basket = parseFlag(v) },
	},
}

var counterpartyAttrs = map[string]attrAccessor{
	AttrCounterpartyType: {
		get: func(e *Entity) string { return e.CounterpartyType },
		set: func(e *Entity, v string) { e.CounterpartyType = v },
	},
	AttrCountry: {
		get: func(e *Entity) string { return e.Country },
		set: func(e *Entity, v string) { e.Country = v },
	},
	AttrSector: {
		get: func(e *Entity) string { return e.Sector },
		set: func(e *Entity, v string) { e.Sector = v },
	},
}

// attributeTable returns the accessor table for an entity kind.
func attributeTable(kind Kind) map[string]attrAccessor {
	table := make(map[string]attrAccessor, len(commonAttrs)+len(securityAttrs))
	for name, acc := range commonAttrs {
		table[name] = acc
	}
	var specific map[string]attrAccessor
	switch kind {
	case KindSecurity:
		specific = securityAttrs
	case KindCounterparty:
		specific = counterpartyAttrs
	}
	for name, acc := range specific {
		table[name] = acc
	}
	return table
}

// parseFlag interprets the boolean spellings vendors actually send.
func parseFlag(v string) bool {
	switch v {
	case "1", "true", "TRUE", "True", "Y", "YES", "yes":
		return true
	default:
		return false
	}
}
