package entity

import "strings"

// ProductRecord is one product of a company catalogue.
type ProductRecord struct {
	ProductName   string `json:"product_name"`
	CompanyName   string `json:"company_name"`
	ContactNumber string `json:"contact_number"`
	Website       string `json:"website"`
	Description   string `json:"description"`
	CatalogueLink string `json:"catalogue_link"`
}

// ProductKey identifies a product. Pack-size variants differ in description
// and therefore have distinct keys.
type ProductKey struct {
	ProductName string
	Description string
}

func (r ProductRecord) Key() ProductKey {
	return ProductKey{ProductName: r.ProductName, Description: r.Description}
}

// Normalize trims surrounding whitespace from every field.
func (r ProductRecord) Normalize() ProductRecord {
	return ProductRecord{
		ProductName:   strings.TrimSpace(r.ProductName),
		CompanyName:   strings.TrimSpace(r.CompanyName),
		ContactNumber: strings.TrimSpace(r.ContactNumber),
		Website:       strings.TrimSpace(r.Website),
		Description:   strings.TrimSpace(r.Description),
		CatalogueLink: strings.TrimSpace(r.CatalogueLink),
	}
}

// Confirms reports whether needle (already lower-cased) occurs literally in
// the product name or description.
func (r ProductRecord) Confirms(needle string) bool {
	return strings.Contains(strings.ToLower(r.ProductName), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle)
}

// PropagateCompanyFields makes company-level attributes identical across all
// records of one document. Each field resolves to the first non-empty value in
// record order and is then written to every record.
func PropagateCompanyFields(records []ProductRecord) {
	var company, contact, website string
	for _, r := range records {
		if company == "" {
			company = r.CompanyName
		}
		if contact == "" {
			contact = r.ContactNumber
		}
		if website == "" {
			website = r.Website
		}
	}
	for i := range records {
		records[i].CompanyName = company
		records[i].ContactNumber = contact
		records[i].Website = website
	}
}

// DedupeRecords drops records whose Key repeats an earlier one, keeping the
// first. Pack-size variants have distinct keys and all survive.
func DedupeRecords(records []ProductRecord) []ProductRecord {
	if len(records) < 2 {
		return records
	}
	seen := make(map[ProductKey]struct{}, len(records))
	out := records[:0:0]
	for _, r := range records {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// FillCatalogueLink points records without a catalogue link at the source file.
func FillCatalogueLink(records []ProductRecord, fileName string) {
	for i := range records {
		if records[i].CatalogueLink == "" {
			records[i].CatalogueLink = fileName
		}
	}
}
