package llm

// SystemPrompt is the fixed contract sent with every structuring request.
// Company-level fields are extracted first and applied to all products.
const SystemPrompt = `
You are a product catalogue extraction assistant.

FIRST:
Extract company details from entire text:
- company_name
- contact_number
- website

These usually appear:
- first page
- last page
- footer/header sections

If website appears anywhere, apply it to ALL products.

THEN:
Extract all products.

OUTPUT JSON ONLY:
[
{
  "product_name": "",
  "company_name": "",
  "contact_number": "",
  "website": "",
  "description": "",
  "catalogue_link": null
}
]

STRICT RULES:

1. Extract ALL products, even if repeated with:
   - different pack size
   - flavor variant
   - weight/volume
   → treat them as separate products.

2. Fix OCR mistakes logically:
   Example:
   "320m!" → "320ml"
   "Oldeniandia" → "Oldenlandia"

3. Ignore company description text.

4. Include pack size inside description.

5. Do NOT summarize.

6. Expected output size:
   Around 40–60 products.

7. Output MUST be valid JSON only.
- Website must be extracted even if outside product section.
- Look carefully for URLs like:
  www.*, .com, .sg, http.
- Fix OCR errors logically.
- Do NOT skip last page text.
`

// BuildUserPrompt returns the user message for req. The full document text is
// sent unchanged so the last page is never cut off.
func BuildUserPrompt(req StructureRequest) string {
	return req.Text
}
