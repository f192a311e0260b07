package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `  [{"a":1}]  `, `[{"a":1}]`},
		{"json tag", "```json\n[1]\n```", "[1]"},
		{"no tag", "```\n[1]\n```", "[1]"},
		{"uppercase tag", "```JSON [1]```", "[1]"},
		{"unterminated", "```json\n[1]", "[1]"},
		{"trailing prose ignored", "```json\n[1]\n```\nHope this helps", "[1]"},
		{"fence not at start", "here:\n```json\n[1]\n```", "here:\n```json\n[1]\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestDecodeProducts_FencedSingleProduct(t *testing.T) {
	records, err := DecodeProducts("```json\n[{\"product_name\":\"X\"}]\n```")
	require.NoError(t, err)
	assert.Equal(t, []entity.ProductRecord{{ProductName: "X"}}, records)
}

func TestDecodeProducts_FencedEqualsUnwrapped(t *testing.T) {
	body := `[
  {"product_name": "Ghee", "company_name": "Acme", "website": "www.acme.sg", "description": "500ml jar", "catalogue_link": null},
  {"product_name": "Ghee", "company_name": "Acme", "website": "www.acme.sg", "description": "1L jar", "catalogue_link": null}
]`
	unwrapped, err := DecodeProducts(body)
	require.NoError(t, err)

	for _, wrapped := range []string{"```json\n" + body + "\n```", "```\n" + body + "\n```", "\n\n" + body + "\n"} {
		got, err := DecodeProducts(wrapped)
		require.NoError(t, err)
		assert.Equal(t, unwrapped, got)
	}
	// pack-size variants stay distinct
	require.Len(t, unwrapped, 2)
	assert.NotEqual(t, unwrapped[0].Key(), unwrapped[1].Key())
}

func TestDecodeProducts_Errors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		reason string
	}{
		{"empty", "   ", "empty output"},
		{"empty fence", "```json\n```", "empty output"},
		{"invalid json", "[{\"product_name\": ", "invalid json"},
		{"prose", "Sorry, I cannot help with that.", "invalid json"},
		{"trailing garbage", `[{"product_name":"A"}] extra`, "invalid json"},
		{"object", `{"product_name":"A"}`, "not a sequence"},
		{"string", `"A"`, "not a sequence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeProducts(tt.in)
			require.Error(t, err)
			assert.Empty(t, records)
			assert.True(t, errors.Is(err, common.ErrDecode))

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.reason, de.Reason)
		})
	}
}

func TestDecodeProducts_LenientFields(t *testing.T) {
	in := `[
  {"product_name": " Mustard Oil ", "contact_number": 6591234567, "website": null, "description": ["1L", "bottle"]},
  {"product_name": "Rice", "seller_contact": "+65 6123 4567", "company_name": true},
  {"product_name": ""},
  {"description": "no name"},
  "not an object",
  42
]`
	records, err := DecodeProducts(in)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, entity.ProductRecord{
		ProductName:   "Mustard Oil",
		ContactNumber: "6591234567",
		Description:   "1L, bottle",
	}, records[0])
	assert.Equal(t, "+65 6123 4567", records[1].ContactNumber)
	assert.Equal(t, "true", records[1].CompanyName)
}

func TestDecodeProducts_EmptyArray(t *testing.T) {
	records, err := DecodeProducts("[]")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestWithFile(t *testing.T) {
	_, err := DecodeProducts("{}")
	err = WithFile(err, "cat.pdf")
	assert.Contains(t, err.Error(), "cat.pdf")
	assert.Contains(t, err.Error(), "not a sequence")

	other := errors.New("boom")
	assert.Equal(t, other, WithFile(other, "cat.pdf"))
}

func TestCheckProductSchema(t *testing.T) {
	assert.NoError(t, CheckProductSchema("```json\n[{\"product_name\":\"X\",\"catalogue_link\":null}]\n```"))
	assert.Error(t, CheckProductSchema(`[{"company_name":"Acme"}]`))
	assert.Error(t, CheckProductSchema(`{"product_name":"X"}`))
	assert.Error(t, CheckProductSchema(`not json`))
}

func TestSystemPromptContract(t *testing.T) {
	for _, want := range []string{
		"You are a product catalogue extraction assistant.",
		`"320m!" → "320ml"`,
		"Around 40–60 products.",
		"www.*, .com, .sg, http.",
		"Do NOT skip last page text.",
	} {
		assert.Contains(t, SystemPrompt, want)
	}
	assert.Equal(t, "full text", BuildUserPrompt(StructureRequest{Text: "full text", FileName: "a.pdf"}))
}
