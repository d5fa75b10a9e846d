package dep

import (
	"strconv"
	"strings"
)

// PropertyValue is the closed variant model for a Notion page property. The
// Type field discriminates which of the value fields is populated. Every
// extraction below is total: anything unrecognized maps to a zero value.
type PropertyValue struct {
	Type        string             `json:"type"`
	Number      *float64           `json:"number,omitempty"`
	Formula     *FormulaValue      `json:"formula,omitempty"`
	Rollup      *RollupValue       `json:"rollup,omitempty"`
	RichText    []*RichTextSegment `json:"rich_text,omitempty"`
	Title       []*RichTextSegment `json:"title,omitempty"`
	Select      *SelectOption      `json:"select,omitempty"`
	MultiSelect []*SelectOption    `json:"multi_select,omitempty"`
	Date        *DateSpan          `json:"date,omitempty"`
	People      []*Person          `json:"people,omitempty"`
	Relation    []*Relation        `json:"relation,omitempty"`
}

type FormulaValue struct {
	Type   string    `json:"type"`
	Number *float64  `json:"number,omitempty"`
	String *string   `json:"string,omitempty"`
	Date   *DateSpan `json:"date,omitempty"`
}

type RollupValue struct {
	Type   string           `json:"type"`
	Number *float64         `json:"number,omitempty"`
	String *string          `json:"string,omitempty"`
	Array  []*PropertyValue `json:"array,omitempty"`
}

type RichTextSegment struct {
	PlainText string `json:"plain_text"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type DateSpan struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

type Person struct {
	Name string `json:"name"`
}

type Relation struct {
	ID string `json:"id"`
}

// NumberValue extracts a numeric value. Rich text and titles are parsed as
// numbers after stripping a trailing percent sign; rollup arrays sum their
// elements; formulas recurse.
func NumberValue(p *PropertyValue) float64 {
	if p == nil {
		return 0
	}

	switch p.Type {
	case "number":
		if p.Number != nil {
			return *p.Number
		}
	case "formula":
		if f := p.Formula; f != nil {
			switch f.Type {
			case "number":
				if f.Number != nil {
					return *f.Number
				}
			case "string":
				if f.String != nil {
					return parseNumeric(*f.String)
				}
			}
		}
	case "rollup":
		if r := p.Rollup; r != nil {
			switch r.Type {
			case "number":
				if r.Number != nil {
					return *r.Number
				}
			case "array":
				var sum float64
				for _, el := range r.Array {
					sum += NumberValue(el)
				}
				return sum
			}
		}
	case "rich_text":
		return parseNumeric(joinSegments(p.RichText))
	case "title":
		return parseNumeric(joinSegments(p.Title))
	}

	return 0
}

// TextValue extracts a display string.
func TextValue(p *PropertyValue) string {
	if p == nil {
		return ""
	}

	switch p.Type {
	case "rich_text":
		return joinSegments(p.RichText)
	case "title":
		return joinSegments(p.Title)
	case "select":
		if p.Select != nil {
			return p.Select.Name
		}
	case "multi_select":
		return joinOptions(p.MultiSelect)
	case "formula":
		if f := p.Formula; f != nil {
			switch f.Type {
			case "string":
				if f.String != nil {
					return *f.String
				}
			case "number":
				if f.Number != nil {
					return strconv.FormatFloat(*f.Number, 'f', -1, 64)
				}
			}
		}
	case "rollup":
		if r := p.Rollup; r != nil {
			switch r.Type {
			case "string":
				if r.String != nil {
					return *r.String
				}
			case "array":
				parts := make([]string, 0, len(r.Array))
				for _, el := range r.Array {
					if s := TextValue(el); s != "" {
						parts = append(parts, s)
					}
				}
				return strings.Join(parts, ", ")
			}
		}
	case "people":
		names := make([]string, 0, len(p.People))
		for _, person := range p.People {
			if person != nil && person.Name != "" {
				names = append(names, person.Name)
			}
		}
		return strings.Join(names, ", ")
	}

	return ""
}

// DateValue extracts the start of a date property, or of a formula wrapping
// a date. Anything else is an empty string.
func DateValue(p *PropertyValue) string {
	if p == nil {
		return ""
	}

	switch p.Type {
	case "date":
		if p.Date != nil {
			return p.Date.Start
		}
	case "formula":
		if f := p.Formula; f != nil && f.Type == "date" && f.Date != nil {
			return f.Date.Start
		}
	}

	return ""
}

// ListValue extracts a list of tags. Unnamed multi-select options default to
// "Other"; relations yield related page ids.
func ListValue(p *PropertyValue) []string {
	if p == nil {
		return []string{}
	}

	switch p.Type {
	case "multi_select":
		out := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			name := "Other"
			if opt != nil && opt.Name != "" {
				name = opt.Name
			}
			out = append(out, name)
		}
		return out
	case "select":
		if p.Select != nil && p.Select.Name != "" {
			return []string{p.Select.Name}
		}
	case "relation":
		out := make([]string, 0, len(p.Relation))
		for _, rel := range p.Relation {
			if rel != nil && rel.ID != "" {
				out = append(out, rel.ID)
			}
		}
		return out
	case "formula":
		if f := p.Formula; f != nil && f.Type == "string" && f.String != nil && *f.String != "" {
			return []string{*f.String}
		}
	}

	return []string{}
}

// parseNumeric parses a number out of free text, tolerating a trailing
// percent sign and surrounding whitespace. Unparseable input is 0.
func parseNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func joinSegments(segments []*RichTextSegment) string {
	var sb strings.Builder
	for _, seg := range segments {
		if seg != nil {
			sb.WriteString(seg.PlainText)
		}
	}
	return sb.String()
}

func joinOptions(options []*SelectOption) string {
	names := make([]string, 0, len(options))
	for _, opt := range options {
		if opt != nil && opt.Name != "" {
			names = append(names, opt.Name)
		}
	}
	return strings.Join(names, ", ")
}
