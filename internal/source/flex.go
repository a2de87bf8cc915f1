package source

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FlexID is a tagged-union identifier as delivered by the upstream API.
// The same field arrives as a JSON number (1042), a string ("1042"), or a
// nested object ({"id": 1042, "name": "..."}); all collapse to one string
// identifier here and nowhere else.
type FlexID struct {
	Value string
	Name  string // populated when the upstream shape was a nested object
}

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Value = s
		return nil
	case '{':
		var obj struct {
			ID   jsoniter.RawMessage `json:"id"`
			Name string              `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		f.Name = obj.Name
		if len(obj.ID) == 0 {
			return fmt.Errorf("nested id object without id field")
		}
		var inner FlexID
		if err := inner.UnmarshalJSON(obj.ID); err != nil {
			return err
		}
		f.Value = inner.Value
		return nil
	default:
		var n jsoniter.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		f.Value = n.String()
		return nil
	}
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

func (f FlexID) String() string {
	return f.Value
}

func (f FlexID) IsZero() bool {
	return f.Value == ""
}

// FlexNumber is a numeric measure that may arrive as a JSON number, a
// numeric string, or null
type FlexNumber struct {
	Value decimal.Decimal
	Set   bool
}

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}

	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("not a numeric value: %q", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	f.Value = d
	f.Set = true
	return nil
}

func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(f.Value.String()), nil
}

func (f FlexNumber) Decimal() decimal.Decimal {
	return f.Value
}
