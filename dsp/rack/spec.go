package rack

import (
	"encoding/json"
	"fmt"
)

type specModule struct {
	Name   string             `json:"name"`
	Kind   string             `json:"kind"`
	Params map[string]float64 `json:"params,omitempty"`
}

type specConnection struct {
	From     string `json:"from"`
	FromPort string `json:"fromPort,omitempty"` //nolint:tagliatelle
	To       string `json:"to"`
	ToPort   string `json:"toPort,omitempty"` //nolint:tagliatelle
}

type spec struct {
	Modules     []specModule     `json:"modules"`
	Connections []specConnection `json:"connections"`
}

// ParseSpec reads a JSON rack description into a Builder.
func ParseSpec(data []byte) (*Builder, error) {
	var s spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("rack: invalid spec json: %w", err)
	}

	b := NewBuilder()

	for _, m := range s.Modules {
		kind, err := ParseKind(m.Kind)
		if err != nil {
			return nil, fmt.Errorf("rack: module %q: %w", m.Name, err)
		}

		b.Add(m.Name, kind, m.Params)
	}

	for _, c := range s.Connections {
		b.Connect(c.From, c.FromPort, c.To, c.ToPort)
	}

	return b, nil
}

// DefaultSpec routes the voice mix straight to the output.
const DefaultSpec = `{
	"modules": [
		{"name": "voices", "kind": "passthrough"},
		{"name": "out", "kind": "passthrough"}
	],
	"connections": [
		{"from": "voices", "to": "out"}
	]
}`
