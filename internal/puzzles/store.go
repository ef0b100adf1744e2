// Package puzzles holds the program templates the bridge curries and the
// drivers that build the bridge's puzzles and solutions from them.
package puzzles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"bridge-core/pkg/clvm"
	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
)

// Template is a named program. Program is nil when only the tree hash is known,
// which is enough for curried-hash computations but not for puzzle reveals.
type Template struct {
	Name    string
	Program *clvm.Program
	Hash    common.Hash
}

// Store is a registry of templates keyed by name. Templates are immutable
// once registered, so lookups may be shared across concurrent builds.
type Store struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewStore returns a store holding the compiled bridge templates and the
// published hashes of the chain's standard templates.
func NewStore() *Store {
	s := &Store{templates: make(map[string]*Template)}
	s.mustRegisterHex(LockerMod, lockerModHex)
	s.mustRegisterHex(UnlockerMod, unlockerModHex)
	s.mustRegisterHex(P2ControllerPuzzleHashMod, p2ControllerPuzzleHashModHex)
	if got := s.templates[P2ControllerPuzzleHashMod].Hash; got != P2ControllerPuzzleHashModHash {
		panic(fmt.Sprintf("p2 controller template hash mismatch: %s", got.Hex()))
	}
	s.Pin(CATMod, CATModHash)
	s.Pin(OfferMod, OfferModHash)
	s.Pin(SingletonTopLayerMod, SingletonTopLayerModHash)
	s.Pin(SingletonLauncher, SingletonLauncherHash)
	return s
}

func (s *Store) mustRegisterHex(name, hexStr string) {
	s.Register(name, clvm.MustFromHex(hexStr))
}

// Pin records the expected hash of a template without its bytes. A template
// already registered with matching bytes is left untouched.
func (s *Store) Pin(name string, hash common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.templates[name]; ok && t.Hash == hash {
		return
	}
	s.templates[name] = &Template{Name: name, Hash: hash}
}

// Register installs prog under name, replacing whatever was there.
func (s *Store) Register(name string, prog *clvm.Program) *Template {
	t := &Template{Name: name, Program: prog, Hash: prog.TreeHash()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[name] = t
	return t
}

// LoadHex parses a serialized template and installs it. When name is pinned,
// the program must hash to the pinned value.
func (s *Store) LoadHex(name, hexStr string) (*Template, error) {
	prog, err := clvm.FromHex(hexStr)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Template{Name: name, Program: prog, Hash: prog.TreeHash()}
	if pinned, ok := s.templates[name]; ok && pinned.Hash != t.Hash {
		return nil, fmt.Errorf("%w: %s hashes to %s, want %s", errno.ErrInvalidTemplate, name, t.Hash.Hex(), pinned.Hash.Hex())
	}
	s.templates[name] = t
	return t, nil
}

// LoadDir loads every <name>.hex file in dir. A missing directory is not an error.
func (s *Store) LoadDir(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var loaded []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".hex" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return loaded, err
		}
		name := strings.TrimSuffix(e.Name(), ".hex")
		if _, err := s.LoadHex(name, string(raw)); err != nil {
			return loaded, err
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}

// Lookup returns the template registered under name.
func (s *Store) Lookup(name string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown template %q", errno.ErrInvalidTemplate, name)
	}
	return t, nil
}

// Program returns the full program of a template.
func (s *Store) Program(name string) (*clvm.Program, error) {
	t, err := s.Lookup(name)
	if err != nil {
		return nil, err
	}
	if t.Program == nil {
		return nil, fmt.Errorf("%w: template %q has no program bytes loaded", errno.ErrInvalidTemplate, name)
	}
	return t.Program, nil
}

// Curry binds args to the named template and returns the puzzle and its hash.
func (s *Store) Curry(name string, args ...*clvm.Program) (*clvm.Program, common.Hash, error) {
	mod, err := s.Program(name)
	if err != nil {
		return nil, common.Hash{}, err
	}
	p, err := clvm.Curry(mod, args...)
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("curry %s: %w", name, err)
	}
	return p, p.TreeHash(), nil
}

// CurryHash computes the curried hash from argument hashes; it works for
// hash-only templates.
func (s *Store) CurryHash(name string, argHashes ...common.Hash) (common.Hash, error) {
	t, err := s.Lookup(name)
	if err != nil {
		return common.Hash{}, err
	}
	return clvm.CurryTreeHash(t.Hash, argHashes...), nil
}

// Names lists registered templates in name order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.templates))
	for name := range s.templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
