package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/copilotmesh/model"
	"github.com/stretchr/testify/assert"
)

var _ model.Model = (*Model)(nil)

func TestBuildMessages_MergesConsecutiveRoles(t *testing.T) {
	msgs := buildMessages([]model.Message{
		{Role: model.RoleUser, Text: "transcript"},
		{Role: model.RoleUser, Text: "prompt"},
		{Role: model.RoleAssistant, Text: "reply"},
		{Role: model.RoleUser, Text: ""},
		{Role: "other", Text: "follow-up"},
	})

	assert.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
}

func TestBuildMessages_Empty(t *testing.T) {
	assert.Empty(t, buildMessages(nil))
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "claude-test"
		o.APIKey = "test-key"
	})

	assert.Equal(t, model.Info{Name: "claude-test", Provider: "anthropic"}, m.Info())
}
