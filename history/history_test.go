package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hupe1980/copilotmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewInMemoryStore(),
		"file":   fs,
	}
}

func TestStore_AppendAndRead(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append("c1", core.NewUserMessage("hello")))
			require.NoError(t, s.Append("c1", core.NewAgentMessage("Hello, USER.")))
			require.NoError(t, s.Append("c2", core.NewUserMessage("other")))

			msgs, err := s.Messages("c1")
			require.NoError(t, err)
			assert.Equal(t, []string{"USER: hello", "AGENT: Hello, USER."}, Lines(msgs))

			m, err := Get(s, "c1", 1)
			require.NoError(t, err)
			assert.Equal(t, core.RoleAgent, m.Role)

			_, err = Get(s, "c1", 2)
			assert.ErrorIs(t, err, ErrIndexOutOfRange)
			_, err = Get(s, "c1", -1)
			assert.ErrorIs(t, err, ErrIndexOutOfRange)

			require.NoError(t, s.Clear("c1"))
			msgs, err = s.Messages("c1")
			require.NoError(t, err)
			assert.Empty(t, msgs)

			msgs, err = s.Messages("c2")
			require.NoError(t, err)
			assert.Len(t, msgs, 1)
		})
	}
}

func TestInMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Append("c", core.NewUserMessage("a")))

	msgs, err := s.Messages("c")
	require.NoError(t, err)
	msgs[0].Text = "mutated"

	again, err := s.Messages("c")
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Text)
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, s.Append("c", core.NewUserMessage("x")))
			}
		}()
	}
	wg.Wait()

	msgs, err := s.Messages("c")
	require.NoError(t, err)
	assert.Len(t, msgs, 500)
}

func TestFileStore_JSONArrayOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Append("conv/../1", core.NewUserMessage("hi")))
	require.NoError(t, s.Append("conv/../1", core.NewAgentMessage("hey")))

	path := s.Path("conv/../1")
	assert.Equal(t, dir, filepath.Dir(path), "ids cannot escape the directory")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lines []string
	require.NoError(t, json.Unmarshal(data, &lines))
	assert.Equal(t, []string{"USER: hi", "AGENT: hey"}, lines)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path("c"), []byte("{not json"), 0o600))
	_, err = s.Messages("c")
	assert.Error(t, err)
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	_, err := NewFileStore(" ")
	assert.Error(t, err)
}
