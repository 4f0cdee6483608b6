package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		vars     map[string]any
		expected string
	}{
		{name: "no markers", text: "plain text", expected: "plain text"},
		{name: "variable", text: "You are {{.name}}.", vars: map[string]any{"name": "Jane"}, expected: "You are Jane."},
		{name: "join", text: "{{join \", \" .peers}}", vars: map[string]any{"peers": []string{"Jane", "Sam"}}, expected: "Jane, Sam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RenderTemplate(tt.text, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.name", nil)
	assert.Error(t, err)
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, NewID())
}
