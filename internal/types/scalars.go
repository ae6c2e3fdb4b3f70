package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Text is a free-text field that tolerates the loose typing of model output:
// numbers and booleans keep their literal form, null becomes empty and
// arrays are joined with "; ". Objects are ignored.
type Text string

// String returns the text value
func (t Text) String() string {
	return string(t)
}

// UnmarshalJSON implements lenient decoding
func (t *Text) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("text: invalid JSON")
	}
	*t = Text(textOf(gjson.ParseBytes(data)))
	return nil
}

func textOf(r gjson.Result) string {
	switch {
	case r.Type == gjson.String:
		return r.Str
	case r.Type == gjson.Number, r.Type == gjson.True, r.Type == gjson.False:
		return r.Raw
	case r.IsArray():
		var parts []string
		r.ForEach(func(_, value gjson.Result) bool {
			if s := strings.TrimSpace(textOf(value)); s != "" {
				parts = append(parts, s)
			}
			return true
		})
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// TextList is a list of free-text entries. A single string decodes to a one-element list.
type TextList []string

// UnmarshalJSON implements lenient decoding
func (l *TextList) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("text list: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	*l = nil
	if !r.IsArray() {
		if s := textOf(r); strings.TrimSpace(s) != "" {
			*l = TextList{s}
		}
		return nil
	}
	r.ForEach(func(_, value gjson.Result) bool {
		if value.IsObject() {
			// {"name": ...} style entries
			if name := value.Get("name"); name.Exists() {
				*l = append(*l, textOf(name))
			}
			return true
		}
		*l = append(*l, textOf(value))
		return true
	})
	return nil
}

// Flag is a boolean that also accepts "true"/"yes"/"1" strings and numbers.
type Flag bool

// UnmarshalJSON implements lenient decoding
func (f *Flag) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("flag: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	switch r.Type {
	case gjson.True:
		*f = true
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(r.Str)) {
		case "true", "yes", "1", "y":
			*f = true
		default:
			*f = false
		}
	case gjson.Number:
		*f = r.Num != 0
	default:
		*f = false
	}
	return nil
}

// Dates is a start/end range. A bare string decodes into Start.
type Dates struct {
	Start     Text `json:"start,omitempty"`
	End       Text `json:"end,omitempty"`
	IsCurrent Flag `json:"is_current,omitempty"`
}

type datesAlias Dates

// UnmarshalJSON accepts either the object form or a single date string
func (d *Dates) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("dates: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		*d = Dates{Start: Text(textOf(r))}
		return nil
	}
	var alias datesAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*d = Dates(alias)
	return nil
}

// IsZero reports whether no part of the range is set
func (d Dates) IsZero() bool {
	return strings.TrimSpace(string(d.Start)) == "" &&
		strings.TrimSpace(string(d.End)) == "" &&
		!bool(d.IsCurrent)
}
