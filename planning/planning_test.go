package planning

import (
	"context"
	"testing"

	"github.com/hupe1980/copilotmesh/core"
	"github.com/hupe1980/copilotmesh/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitGoals(t *testing.T) {
	assert.Equal(t, []string{"design", "build", "ship"}, SplitGoals(" design, build ,, ship ,"))
	assert.Empty(t, SplitGoals(" , "))
}

func TestAssignTasks_RoundRobin(t *testing.T) {
	got := AssignTasks([]string{"a", "b", "c"}, core.Roster{"Jane", "Sam"})
	assert.Equal(t, []Assignment{
		{Goal: "a", Copilot: "Jane"},
		{Goal: "b", Copilot: "Sam"},
		{Goal: "c", Copilot: "Jane"},
	}, got)
	assert.Nil(t, AssignTasks([]string{"a"}, nil))
}

func TestPlanner_Run(t *testing.T) {
	p, err := New(core.Roster{"Jane", "Sam"})
	require.NoError(t, err)

	plan, err := p.Run(context.Background(), "design, build")
	require.NoError(t, err)

	assert.Equal(t, "Jane", plan.Leader)
	assert.False(t, plan.Consensus)
	assert.Equal(t, []string{
		"Jane has been appointed as the leader.",
		"Goals set for planning: design, build",
		"Jane will work on design.",
		"Sam will work on build.",
		"Leader Jane suggests: Ensure to follow all the guidelines while working on build.",
	}, plan.Transcript)
	assert.InDelta(t, 1.0, plan.Ledger.Weights()["Jane"], 1e-9)
	assert.InDelta(t, 1.2, plan.Ledger.Weights()["Sam"], 1e-9)
}

func TestPlanner_StopsOnConsensus(t *testing.T) {
	p, err := New(core.Roster{"Jane", "Sam"}, func(o *Options) {
		o.LedgerOptions = []func(*ledger.Options){func(lo *ledger.Options) { lo.Threshold = 0.5 }}
	})
	require.NoError(t, err)

	plan, err := p.Run(context.Background(), "a, b, c")
	require.NoError(t, err)
	assert.True(t, plan.Consensus)
	assert.Equal(t, "Jane will work on a.", plan.Transcript[len(plan.Transcript)-1])
}

func TestPlanner_Errors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ledger.ErrEmptyRoster)

	p, err := New(core.DefaultRoster)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), " , ")
	assert.ErrorIs(t, err, ErrNoGoals)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	plan, err := p.Run(ctx, "a, b")
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, plan)
	assert.Len(t, plan.Transcript, 2)
}
