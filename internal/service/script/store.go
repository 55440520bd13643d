// Package script manages the offline conversation script: scripted turn
// lookup for live interactions and batch audio pre-generation.
package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parleylab/negotiation-avatar/internal/model/dialogue"
)

const (
	inputFileName        = "ConversationScript.json"
	completeFileName     = "CompleteConversationScript.json"
	placeholdersFileName = "Placeholders.json"
)

// ErrNodeNotFound marks a lookup for a node the script does not define.
var ErrNodeNotFound = errors.New("script node not found")

// Store loads and serves the conversation script from disk.
type Store struct {
	dir string

	mu    sync.RWMutex
	nodes map[int]dialogue.ScriptNode
}

// NewStore creates a store over the given script directory. Missing script
// files are tolerated; the store just serves no scripted nodes then.
func NewStore(dir string) *Store {
	return &Store{dir: dir, nodes: make(map[int]dialogue.ScriptNode)}
}

// Load reads the conversation script. Call once at startup; safe to call
// again to pick up regenerated files.
func (s *Store) Load() error {
	path := filepath.Join(s.dir, inputFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read script file: %w", err)
	}

	var nodes []dialogue.ScriptNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return fmt.Errorf("parse script file %s: %w", path, err)
	}

	indexed := make(map[int]dialogue.ScriptNode, len(nodes))
	for _, node := range nodes {
		indexed[node.NodeID] = node
	}

	s.mu.Lock()
	s.nodes = indexed
	s.mu.Unlock()
	return nil
}

// FindNode returns the script node for the identifier.
func (s *Store) FindNode(nodeID int) (dialogue.ScriptNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[nodeID]
	return node, ok
}

// Nodes returns all script nodes in unspecified order.
func (s *Store) Nodes() []dialogue.ScriptNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]dialogue.ScriptNode, 0, len(s.nodes))
	for _, node := range s.nodes {
		out = append(out, node)
	}
	return out
}
