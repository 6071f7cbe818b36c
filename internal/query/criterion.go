package query

import (
	"encoding/json"
	"strings"

	"libraryapi/internal/apperr"
)

// Operator is a comparison applied by a filter criterion.
type Operator int

const (
	Equal Operator = iota + 1
	NotEqual
	Contains
	StartsWith
	EndsWith
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
)

var operatorNames = map[Operator]string{
	Equal:              "Equal",
	NotEqual:           "NotEqual",
	Contains:           "Contains",
	StartsWith:         "StartsWith",
	EndsWith:           "EndsWith",
	GreaterThan:        "GreaterThan",
	GreaterThanOrEqual: "GreaterThanOrEqual",
	LessThan:           "LessThan",
	LessThanOrEqual:    "LessThanOrEqual",
}

var operatorAliases = map[string]Operator{
	"eq":  Equal,
	"ne":  NotEqual,
	"gt":  GreaterThan,
	"gte": GreaterThanOrEqual,
	"lt":  LessThan,
	"lte": LessThanOrEqual,
}

func (o Operator) String() string {
	if n, ok := operatorNames[o]; ok {
		return n
	}
	return "Unknown"
}

// ParseOperator accepts operator names case-insensitively plus short aliases.
func ParseOperator(s string) (Operator, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if op, ok := operatorAliases[key]; ok {
		return op, true
	}
	for op, name := range operatorNames {
		if strings.ToLower(name) == key {
			return op, true
		}
	}
	return 0, false
}

// textual operators only apply to string fields.
func (o Operator) textual() bool {
	return o == Contains || o == StartsWith || o == EndsWith
}

// ranged operators only apply to ordered kinds.
func (o Operator) ranged() bool {
	return o == GreaterThan || o == GreaterThanOrEqual || o == LessThan || o == LessThanOrEqual
}

// Criterion is one declarative predicate, as received on the wire.
type Criterion struct {
	PropertyName string `json:"PropertyName"`
	Operator     string `json:"Operator"`
	Value        string `json:"Value"`
}

// ParseCriteria decodes the JSON filter array. Blank input means no criteria.
// Keys match case-insensitively through encoding/json.
func ParseCriteria(raw string) ([]Criterion, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []Criterion
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, apperr.Invalid("filters must be a JSON array of {PropertyName, Operator, Value}")
	}
	return out, nil
}

// UnmarshalJSON also accepts bare JSON numbers and booleans as the value.
func (c *Criterion) UnmarshalJSON(data []byte) error {
	var wire struct {
		PropertyName string          `json:"PropertyName"`
		Operator     string          `json:"Operator"`
		Value        json.RawMessage `json:"Value"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.PropertyName = wire.PropertyName
	c.Operator = wire.Operator
	c.Value = ""
	if len(wire.Value) == 0 || string(wire.Value) == "null" {
		return nil
	}
	if wire.Value[0] == '"' {
		return json.Unmarshal(wire.Value, &c.Value)
	}
	c.Value = string(wire.Value)
	return nil
}
