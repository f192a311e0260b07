package llm

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

// fieldAliases lists the keys accepted for each record field, canonical key
// first. Models occasionally echo older field names from the catalogue CSVs.
var fieldAliases = map[string][]string{
	"product_name":   {"product_name", "name", "product"},
	"company_name":   {"company_name", "company"},
	"contact_number": {"contact_number", "seller_contact", "contact", "phone"},
	"website":        {"website", "url"},
	"description":    {"description"},
	"catalogue_link": {"catalogue_link", "catalog_link"},
}

// recordFromMap builds a record from one decoded object. Missing keys and
// wrong types never fail; they become "".
func recordFromMap(m map[string]any) entity.ProductRecord {
	return entity.ProductRecord{
		ProductName:   lookup(m, "product_name"),
		CompanyName:   lookup(m, "company_name"),
		ContactNumber: lookup(m, "contact_number"),
		Website:       lookup(m, "website"),
		Description:   lookup(m, "description"),
		CatalogueLink: lookup(m, "catalogue_link"),
	}.Normalize()
}

func lookup(m map[string]any, field string) string {
	for _, k := range fieldAliases[field] {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(coerceString(v)); s != "" {
			return s
		}
	}
	return ""
}

// coerceString renders any decoded JSON value as a string. null is "".
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(coerceString(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
