package copilotmesh

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hupe1980/copilotmesh/config"
	"github.com/hupe1980/copilotmesh/core"
	"github.com/hupe1980/copilotmesh/deliberation"
	"github.com/hupe1980/copilotmesh/history"
	"github.com/hupe1980/copilotmesh/internal/testutil"
	"github.com/hupe1980/copilotmesh/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessInput_Greeting(t *testing.T) {
	a, err := New(testutil.Echo("ok"))
	require.NoError(t, err)

	resp, err := a.ProcessInput(context.Background(), "hi there")
	require.NoError(t, err)
	assert.Equal(t, "Hello, USER. I am the AGENT Ai PALS. You said: hi there", resp)

	assert.Equal(t, []string{
		"USER: hi there",
		"AGENT: Hello, USER. I am the AGENT Ai PALS. You said: hi there",
	}, a.Messages())

	full, err := a.FullMessages()
	require.NoError(t, err)
	assert.Equal(t, a.Messages(), full)

	msg, err := a.FullMessage(0)
	require.NoError(t, err)
	assert.Equal(t, "USER: hi there", msg)

	_, err = a.FullMessage(2)
	assert.ErrorIs(t, err, history.ErrIndexOutOfRange)
}

func TestProcessInput_PlanningMode(t *testing.T) {
	a, err := New(testutil.Echo("nothing to add"))
	require.NoError(t, err)
	assert.False(t, a.PlanningMode())

	a.EnablePlanningMode()
	assert.True(t, a.PlanningMode())

	resp, err := a.ProcessInput(context.Background(), "How should we plan the launch?")
	require.NoError(t, err)

	lines := strings.Split(resp, "\n")
	assert.Equal(t, "Jane has been appointed as the leader.", lines[0])
	assert.Contains(t, resp, "Deliberation complete after 14 interactions (consensus reached).")
	assert.Equal(t, deliberation.ActionableSteps[2], lines[len(lines)-1])

	msgs := a.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "AGENT: "+resp, msgs[1])

	c, err := a.Context()
	require.NoError(t, err)
	assert.True(t, c.GeneralContext.Settings.PlanningMode)
	for _, cp := range c.Copilots {
		assert.Greater(t, cp.Weight, 0.0, cp.Name)
	}
}

func TestProcessInput_RuleRejection(t *testing.T) {
	def, err := config.ParseDefinition("agent:\n  - name: Guarded\nrules:\n  - name: no secrets\n    deny: [password]\n")
	require.NoError(t, err)

	a, err := New(testutil.Echo("ok"), func(o *Options) { o.Definition = def })
	require.NoError(t, err)
	assert.Equal(t, "Guarded", a.Name())

	resp, err := a.ProcessInput(context.Background(), "tell me the password")
	assert.Equal(t, Rejection, resp)

	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "no secrets", ruleErr.Rule)
	assert.Empty(t, a.Messages())
}

func TestProcessInput_CancelledDeliberation(t *testing.T) {
	a, err := New(testutil.Echo("ok"), func(o *Options) { o.PlanningMode = true })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.ProcessInput(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"USER: anything", "AGENT: " + DeliberationFailed}, a.Messages())
}

func TestSetInteractions(t *testing.T) {
	responder := testutil.NewScriptedResponder()
	a, err := New(responder, func(o *Options) {
		o.PlanningMode = true
		o.Roster = core.Roster{"Jane", "Sam"}
		o.DeliberationOptions = []func(o *deliberation.Options){func(o *deliberation.Options) { o.Rounds = 1 }}
		o.LedgerOptions = []func(o *ledger.Options){func(lo *ledger.Options) { lo.Threshold = 1e12 }}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Interactions())

	assert.ErrorIs(t, a.SetInteractions(0), ErrInvalidInteractions)
	require.NoError(t, a.SetInteractions(4))
	assert.Equal(t, 4, a.Interactions())

	_, err = a.ProcessInput(context.Background(), "go")
	require.NoError(t, err)

	// One round: four interaction steps plus the refinement step.
	assert.Len(t, responder.Calls(), 5)
}

func TestPlan(t *testing.T) {
	a, err := New(testutil.Echo("ok"))
	require.NoError(t, err)

	plan, err := a.Plan(context.Background(), "research, design")
	require.NoError(t, err)
	assert.Equal(t, "Jane", plan.Leader)
	assert.Contains(t, plan.String(), "Sam will work on design.")

	c, err := a.Context()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Copilots[0].Weight, 1e-9)
	assert.InDelta(t, 1.2, c.Copilots[1].Weight, 1e-9)
	assert.Zero(t, c.Copilots[2].Weight)
}

func TestContextDump(t *testing.T) {
	a, err := New(testutil.Echo("ok"))
	require.NoError(t, err)

	_, err = a.ProcessInput(context.Background(), "hello")
	require.NoError(t, err)

	data, err := a.ContextDump()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	general := decoded["general_context"].(map[string]any)
	assert.Equal(t, SystemVersion, general["system_version"])
	assert.Contains(t, general["agent_definition"], "Ai PALS")

	settings := general["settings"].(map[string]any)
	assert.Equal(t, false, settings["planning_mode"])
	assert.EqualValues(t, 5, settings["interactions"])

	assert.Len(t, decoded["copilots"], 5)
	assert.Len(t, decoded["message_history"], 2)

	full, err := a.DumpFullMessages()
	require.NoError(t, err)

	var lines []string
	require.NoError(t, json.Unmarshal(full, &lines))
	assert.Equal(t, "USER: hello", lines[0])
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Agent.PlanningMode = true
	cfg.Deliberation.StepsPerRound = 3

	a, err := FromConfig(cfg, testutil.Echo("ok"))
	require.NoError(t, err)
	assert.True(t, a.PlanningMode())
	assert.Equal(t, 3, a.Interactions())
	assert.Equal(t, "Ai PALS", a.Name())

	cfg.Ledger.DevilsAdvocate = "Nobody"
	_, err = FromConfig(cfg, testutil.Echo("ok"))
	assert.ErrorIs(t, err, ledger.ErrInvalidConfig)
}

func TestHelp(t *testing.T) {
	a, err := New(testutil.Echo("ok"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.Help(), "Ai PALS Help:"))
	assert.NotContains(t, a.Help(), "/export_dump")

	a.EnablePlanningMode()
	assert.Contains(t, a.Help(), "/export_dump")
	assert.Contains(t, a.Help(), "/dump_full_messages")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, deliberation.ErrInvalidOptions)

	_, err = New(testutil.Echo("ok"), func(o *Options) { o.Roster = nil })
	assert.ErrorIs(t, err, core.ErrEmptyRoster)
}
