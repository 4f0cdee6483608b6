package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hupe1980/copilotmesh/core"
)

const (
	historyFileMode = 0o600
	historyDirMode  = 0o700
	tempFilePattern = ".history-*.json.tmp"
)

// FileStore keeps each conversation as a JSON array of "<ROLE>: <text>"
// lines in <dir>/<conversationID>.json. Writes replace the file atomically;
// concurrent writers to the same directory follow last write wins.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("history directory is empty")
	}
	if err := os.MkdirAll(dir, historyDirMode); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file backing a conversation.
func (s *FileStore) Path(conversationID string) string {
	return filepath.Join(s.dir, sanitize(conversationID)+".json")
}

// Append adds a message and rewrites the conversation file.
func (s *FileStore) Append(conversationID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines(conversationID)
	if err != nil {
		return err
	}
	return s.writeLines(conversationID, append(lines, msg.String()))
}

// Messages reads the conversation back. Only role and text survive the
// round trip; IDs and timestamps are not persisted.
func (s *FileStore) Messages(conversationID string) ([]core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines(conversationID)
	if err != nil {
		return nil, err
	}
	msgs := make([]core.Message, len(lines))
	for i, line := range lines {
		msgs[i] = core.ParseMessage(line)
	}
	return msgs, nil
}

// Clear deletes the conversation file.
func (s *FileStore) Clear(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(conversationID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove history file: %w", err)
	}
	return nil
}

func (s *FileStore) readLines(conversationID string) ([]string, error) {
	data, err := os.ReadFile(s.Path(conversationID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode history file: %w", err)
	}
	return lines, nil
}

func (s *FileStore) writeLines(conversationID string, lines []string) error {
	data, err := json.MarshalIndent(lines, "", "    ")
	if err != nil {
		return fmt.Errorf("encode history file: %w", err)
	}

	tempFile, err := os.CreateTemp(s.dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp history file: %w", err)
	}

	if err := tempFile.Chmod(historyFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp history file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp history file: %w", err)
	}

	if err := os.Rename(tempName, s.Path(conversationID)); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}

	cleanup = false
	return nil
}

func sanitize(id string) string {
	if id == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
