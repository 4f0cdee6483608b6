package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/copilotmesh"
	"github.com/hupe1980/copilotmesh/config"
	"github.com/hupe1980/copilotmesh/history"
	"github.com/hupe1980/copilotmesh/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShell(t *testing.T, optFns ...func(o *copilotmesh.Options)) (*Shell, *copilotmesh.Agent, *bytes.Buffer) {
	t.Helper()
	agent, err := copilotmesh.New(testutil.Echo("nothing to add"), optFns...)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return New(agent, Config{Stdout: out}), agent, out
}

func TestHandle_Message(t *testing.T) {
	s, _, out := newShell(t)

	require.NoError(t, s.Handle(context.Background(), "hello"))
	assert.Equal(t, "AGENT: Hello, USER. I am the AGENT Ai PALS. You said: hello\n", out.String())

	out.Reset()
	require.NoError(t, s.Handle(context.Background(), "   "))
	assert.Empty(t, out.String())
}

func TestHandle_ExitSaysGoodbye(t *testing.T) {
	s, agent, out := newShell(t)

	err := s.Handle(context.Background(), "Exit")
	assert.ErrorIs(t, err, ErrQuit)
	assert.Contains(t, out.String(), "AGENT: Hello, USER. I am the AGENT Ai PALS. You said: Exit\n")
	assert.Contains(t, out.String(), "AGENT: Goodbye!\n")
	assert.Len(t, agent.Messages(), 2)

	assert.ErrorIs(t, s.Handle(context.Background(), "/quit"), ErrQuit)
}

func TestHandle_PlanningCommands(t *testing.T) {
	s, agent, out := newShell(t)
	ctx := context.Background()

	require.NoError(t, s.Handle(ctx, "/enable_planning_mode"))
	assert.Equal(t, "AGENT: Planning mode enabled!\n", out.String())
	assert.True(t, agent.PlanningMode())

	out.Reset()
	require.NoError(t, s.Handle(ctx, "/set_interactions 3"))
	assert.Equal(t, "AGENT: Minimum interactions set to 3!\n", out.String())
	assert.Equal(t, 3, agent.Interactions())

	out.Reset()
	require.NoError(t, s.Handle(ctx, "/set_interactions many"))
	assert.Equal(t, "AGENT: Invalid input. Please provide a number after /set_interactions.\n", out.String())

	out.Reset()
	require.NoError(t, s.Handle(ctx, "/set_interactions 0"))
	assert.Contains(t, out.String(), "AGENT: Invalid input.")
	assert.Equal(t, 3, agent.Interactions())

	out.Reset()
	require.NoError(t, s.Handle(ctx, "What now?"))
	assert.Contains(t, out.String(), "AGENT: Jane has been appointed as the leader.\n")
	assert.Contains(t, out.String(), "Actionable steps:")

	out.Reset()
	require.NoError(t, s.Handle(ctx, "/help"))
	assert.Contains(t, out.String(), "/export_dump")
}

func TestHandle_Plan(t *testing.T) {
	s, _, out := newShell(t)

	require.NoError(t, s.Handle(context.Background(), "/plan research, build"))
	assert.Contains(t, out.String(), "Jane will work on research.")
	assert.Contains(t, out.String(), "Leader Jane suggests: Ensure to follow all the guidelines while working on build.")

	assert.Error(t, s.Handle(context.Background(), "/plan"))
}

func TestHandle_Dumps(t *testing.T) {
	s, _, out := newShell(t)
	ctx := context.Background()

	require.NoError(t, s.Handle(ctx, "hi"))

	out.Reset()
	require.NoError(t, s.Handle(ctx, "/export_dump"))
	assert.True(t, json.Valid(bytes.TrimSpace(out.Bytes())))
	assert.Contains(t, out.String(), `"system_version": "1.0"`)

	path := filepath.Join(t.TempDir(), "full_messages_dump.json")
	out.Reset()
	require.NoError(t, s.Handle(ctx, "/dump_full_messages "+path))
	assert.Equal(t, "AGENT: Full messages exported to '"+path+"'.\n", out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lines []string
	require.NoError(t, json.Unmarshal(data, &lines))
	assert.Equal(t, []string{"USER: hi", "AGENT: Hello, USER. I am the AGENT Ai PALS. You said: hi"}, lines)

	out.Reset()
	require.NoError(t, s.Handle(ctx, "/message 1"))
	assert.Equal(t, "AGENT: AGENT: Hello, USER. I am the AGENT Ai PALS. You said: hi\n", out.String())

	out.Reset()
	require.NoError(t, s.Handle(ctx, "/message 9"))
	assert.Equal(t, "AGENT: Message index out of range.\n", out.String())
}

func TestHandle_MessageStoreError(t *testing.T) {
	store, err := history.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s, _, out := newShell(t, func(o *copilotmesh.Options) {
		o.History = store
		o.ConversationID = "broken"
	})
	require.NoError(t, os.WriteFile(store.Path("broken"), []byte("{not json"), 0o600))

	err = s.Handle(context.Background(), "/message 0")
	require.Error(t, err)
	assert.NotErrorIs(t, err, history.ErrIndexOutOfRange)
	assert.Empty(t, out.String())
}

func TestHandle_RejectedInput(t *testing.T) {
	def, err := config.ParseDefinition("agent:\n  - name: Guarded\nrules:\n  - name: no secrets\n    deny: [password]\n")
	require.NoError(t, err)

	s, _, out := newShell(t, func(o *copilotmesh.Options) { o.Definition = def })

	require.NoError(t, s.Handle(context.Background(), "my password is hunter2"))
	assert.Equal(t, "AGENT: I cannot process that request.\n", out.String())
}

func TestHandle_UnknownCommand(t *testing.T) {
	s, _, out := newShell(t)
	require.NoError(t, s.Handle(context.Background(), "/dance"))
	assert.Equal(t, "Unknown command: /dance\n", out.String())
}
