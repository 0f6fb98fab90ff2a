// Package snapshot reads and writes a task tree as a single YAML document.
//
// The document stores the tree in flat form: every task keyed by id and the
// ordered child ids of each parent, so no pointers need to be encoded.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rpggio/tasktory/internal/domain/task"
	"gopkg.in/yaml.v3"
)

// Version is the document version written by Encode.
const Version = 1

// ErrUnsupportedVersion is returned for documents written by a newer release.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

var fileLock sync.Mutex

// Document is the on-disk layout.
type Document struct {
	Version  int            `yaml:"version"`
	SavedAt  time.Time      `yaml:"saved_at"`
	Root     int            `yaml:"root"`
	Nodes    map[int]Record `yaml:"nodes"`
	Children map[int][]int  `yaml:"children,omitempty"`
}

// Record holds the fields of a single task.
type Record struct {
	Name      string         `yaml:"name"`
	Deadline  int            `yaml:"deadline,omitempty"`
	Status    task.Status    `yaml:"status"`
	Category  string         `yaml:"category,omitempty"`
	Comments  string         `yaml:"comments,omitempty"`
	Timetable []task.Session `yaml:"timetable,omitempty"`
}

// Encode writes the tree rooted at root to w.
func Encode(w io.Writer, root *task.Node) error {
	arena, err := task.Flatten(root)
	if err != nil {
		return fmt.Errorf("failed to flatten tree: %w", err)
	}

	doc := Document{
		Version:  Version,
		SavedAt:  time.Now().UTC().Truncate(time.Second),
		Root:     arena.Root,
		Nodes:    make(map[int]Record, len(arena.Nodes)),
		Children: arena.Children,
	}
	for id, n := range arena.Nodes {
		doc.Nodes[id] = Record{
			Name:      n.Name,
			Deadline:  n.Deadline,
			Status:    n.Status,
			Category:  n.Category,
			Comments:  n.Comments,
			Timetable: n.Timetable,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

// Decode reads a tree written by Encode and checks it is well formed.
func Decode(r io.Reader) (*task.Node, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	arena := task.Arena{
		Root:     doc.Root,
		Nodes:    make(map[int]*task.Node, len(doc.Nodes)),
		Children: doc.Children,
	}
	for id, rec := range doc.Nodes {
		n := task.New(id, rec.Name, rec.Deadline)
		n.Status = rec.Status
		n.Category = rec.Category
		n.Comments = rec.Comments
		n.Timetable = rec.Timetable
		arena.Nodes[id] = n
	}

	root, err := arena.Build()
	if err != nil {
		return nil, err
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}

// Save writes the tree to path atomically through a temporary file.
func Save(path string, root *task.Node) error {
	fileLock.Lock()
	defer fileLock.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := Encode(f, root); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	return nil
}

// Load reads the tree stored at path.
func Load(path string) (*task.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
