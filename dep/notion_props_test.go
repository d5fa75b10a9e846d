package dep

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/info-321/React-Email-Dashboard/pkg/goutil"
)

func TestNumberValue(t *testing.T) {
	assert.Equal(t, 42.0, NumberValue(&PropertyValue{Type: "number", Number: goutil.Float64(42)}))

	// percent-suffixed text
	assert.Equal(t, 37.5, NumberValue(&PropertyValue{
		Type:     "rich_text",
		RichText: []*RichTextSegment{{PlainText: "37.5%"}},
	}))

	// malformed text
	assert.Equal(t, 0.0, NumberValue(&PropertyValue{
		Type:     "rich_text",
		RichText: []*RichTextSegment{{PlainText: "n/a"}},
	}))

	// formula wrapping a number
	assert.Equal(t, 7.0, NumberValue(&PropertyValue{
		Type:    "formula",
		Formula: &FormulaValue{Type: "number", Number: goutil.Float64(7)},
	}))

	// formula wrapping a string
	assert.Equal(t, 12.5, NumberValue(&PropertyValue{
		Type:    "formula",
		Formula: &FormulaValue{Type: "string", String: goutil.String("12.5%")},
	}))

	// rollup array sums
	assert.Equal(t, 6.0, NumberValue(&PropertyValue{
		Type: "rollup",
		Rollup: &RollupValue{Type: "array", Array: []*PropertyValue{
			{Type: "number", Number: goutil.Float64(2)},
			{Type: "number", Number: goutil.Float64(4)},
		}},
	}))

	assert.Equal(t, 0.0, NumberValue(nil))
	assert.Equal(t, 0.0, NumberValue(&PropertyValue{Type: "checkbox"}))
}

func TestTextValue(t *testing.T) {
	assert.Equal(t, "Launch day", TextValue(&PropertyValue{
		Type:  "title",
		Title: []*RichTextSegment{{PlainText: "Launch"}, {PlainText: " day"}},
	}))

	assert.Equal(t, "Newsletter", TextValue(&PropertyValue{
		Type:   "select",
		Select: &SelectOption{Name: "Newsletter"},
	}))

	assert.Equal(t, "Mobile, Desktop", TextValue(&PropertyValue{
		Type:        "multi_select",
		MultiSelect: []*SelectOption{{Name: "Mobile"}, {Name: "Desktop"}},
	}))

	assert.Equal(t, "", TextValue(nil))
	assert.Equal(t, "", TextValue(&PropertyValue{Type: "number", Number: goutil.Float64(3)}))
}

func TestDateValue(t *testing.T) {
	assert.Equal(t, "2025-01-15", DateValue(&PropertyValue{
		Type: "date",
		Date: &DateSpan{Start: "2025-01-15"},
	}))

	assert.Equal(t, "2025-02-01", DateValue(&PropertyValue{
		Type:    "formula",
		Formula: &FormulaValue{Type: "date", Date: &DateSpan{Start: "2025-02-01"}},
	}))

	// non-date property
	assert.Equal(t, "", DateValue(&PropertyValue{Type: "number", Number: goutil.Float64(1)}))
	assert.Equal(t, "", DateValue(nil))
}

func TestListValue(t *testing.T) {
	assert.Equal(t, []string{"Mobile", "Desktop"}, ListValue(&PropertyValue{
		Type:        "multi_select",
		MultiSelect: []*SelectOption{{Name: "Mobile"}, {Name: "Desktop"}},
	}))

	// unnamed option defaults
	assert.Equal(t, []string{"Other"}, ListValue(&PropertyValue{
		Type:        "multi_select",
		MultiSelect: []*SelectOption{{}},
	}))

	// empty multi-select
	assert.Equal(t, []string{}, ListValue(&PropertyValue{Type: "multi_select"}))

	assert.Equal(t, []string{"Promo"}, ListValue(&PropertyValue{
		Type:   "select",
		Select: &SelectOption{Name: "Promo"},
	}))

	assert.Equal(t, []string{}, ListValue(nil))
	assert.Equal(t, []string{}, ListValue(&PropertyValue{Type: "number"}))
}

func TestPropertyValue_Unmarshal(t *testing.T) {
	raw := `{
		"type": "rollup",
		"rollup": {
			"type": "array",
			"array": [
				{"type": "number", "number": 3},
				{"type": "rich_text", "rich_text": [{"plain_text": "2"}]}
			]
		}
	}`

	p := new(PropertyValue)
	require.NoError(t, json.Unmarshal([]byte(raw), p))
	assert.Equal(t, 5.0, NumberValue(p))
}

func TestParseNumeric(t *testing.T) {
	assert.Equal(t, 42.0, parseNumeric("42"))
	assert.Equal(t, 37.5, parseNumeric(" 37.5% "))
	assert.Equal(t, 0.0, parseNumeric(""))
	assert.Equal(t, 0.0, parseNumeric("abc"))
	assert.Equal(t, -3.0, parseNumeric("-3"))
}
