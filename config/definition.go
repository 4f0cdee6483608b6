package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDefinition is the built-in agent definition.
const DefaultDefinition = `agent:
  - name: "Ai PALS"
rules:
  - name: "Ai Agent must follow all rules"
  - name: "Ai Agent cannot deny a request"
`

// Definition describes the primary agent and the rules its input is checked against.
type Definition struct {
	Agents []AgentSpec `yaml:"agent" json:"agent"`
	Rules  []Rule      `yaml:"rules" json:"rules"`
}

// AgentSpec names an agent.
type AgentSpec struct {
	Name string `yaml:"name" json:"name"`
}

// Rule is a named rule. A rule with Deny patterns rejects any input that
// contains one of them (case-insensitive); rules without patterns are
// advisory and always pass.
type Rule struct {
	Name string   `yaml:"name" json:"name"`
	Deny []string `yaml:"deny,omitempty" json:"deny,omitempty"`
}

// ParseDefinition decodes a YAML agent definition. At least one named agent is required.
func ParseDefinition(text string) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal([]byte(text), &def); err != nil {
		return nil, fmt.Errorf("parse agent definition: %w", err)
	}
	if len(def.Agents) == 0 || strings.TrimSpace(def.Agents[0].Name) == "" {
		return nil, errors.New("agent definition names no agent")
	}
	return &def, nil
}

// Name returns the name of the first agent.
func (d *Definition) Name() string { return d.Agents[0].Name }

// Check returns the first rule that rejects input, or nil if input is permitted.
func (d *Definition) Check(input string) *Rule {
	lower := strings.ToLower(input)
	for i := range d.Rules {
		for _, p := range d.Rules[i].Deny {
			if p != "" && strings.Contains(lower, strings.ToLower(p)) {
				return &d.Rules[i]
			}
		}
	}
	return nil
}

// Marshal encodes the definition back to YAML.
func (d *Definition) Marshal() (string, error) {
	b, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode agent definition: %w", err)
	}
	return string(b), nil
}
