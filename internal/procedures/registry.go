// Package procedures holds the traced algorithms that drive the engine and
// the registry the front ends look them up in.
package procedures

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/validate"
)

// Family groups procedures that share a visualization state.
type Family string

const (
	FamilySorting     Family = "sorting"
	FamilyGraph       Family = "graph"
	FamilyPathfinding Family = "pathfinding"
	FamilyDP          Family = "dp"
	FamilyStructures  Family = "structures"
)

// Families lists every family in display order.
var Families = []Family{FamilySorting, FamilyGraph, FamilyPathfinding, FamilyDP, FamilyStructures}

// Spec describes a registered procedure.
type Spec struct {
	ID          string   `json:"id"`
	Family      Family   `json:"family"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Complexity  string   `json:"complexity"`
	Counters    []string `json:"counters"`
	// Source is pseudocode; Frame.Line is a 1-based index into it.
	Source []string `json:"source"`

	order int
	open  func(p Params, opts engine.Options) (Instance, error)
}

// New builds a fresh instance of the procedure for the given input.
func (s *Spec) New(p Params, opts engine.Options) (Instance, error) {
	return s.open(p, opts)
}

// SourceLine returns the pseudocode line for a 1-based line number, or ""
// when line is out of range.
func (s *Spec) SourceLine(line int) string {
	if line < 1 || line > len(s.Source) {
		return ""
	}
	return s.Source[line-1]
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Spec)
)

func register(s *Spec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[s.ID]; dup {
		panic("procedures: duplicate id " + s.ID)
	}
	s.order = len(registry)
	registry[s.ID] = s
}

// Lookup finds a procedure by id. Ids are matched case-insensitively and
// with underscores or spaces treated as dashes.
func Lookup(id string) (*Spec, error) {
	key := validate.SanitizeID(id)
	registryMu.RLock()
	s, ok := registry[key]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.NewUserErrorWithField("procedure", id,
			"Unknown procedure",
			errors.GetSuggestion(errors.ErrUnknownProcedure)).
			WithCause(errors.ErrUnknownProcedure)
	}
	return s, nil
}

// All returns every procedure grouped by family in registration order.
func All() []*Spec {
	registryMu.RLock()
	out := slices.Collect(maps.Values(registry))
	registryMu.RUnlock()
	slices.SortFunc(out, func(a, b *Spec) int {
		if c := cmp.Compare(slices.Index(Families, a.Family), slices.Index(Families, b.Family)); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	return out
}

// ByFamily returns the procedures of one family.
func ByFamily(f Family) []*Spec {
	return slices.DeleteFunc(All(), func(s *Spec) bool { return s.Family != f })
}

// Instance is a procedure bound to its own controller and input.
type Instance interface {
	engine.Player

	// Spec returns the procedure's registry entry.
	Spec() *Spec
	// Params returns the parameters the current input was built from.
	Params() Params
	// Reset stops any run and rebuilds the input from p.
	Reset(p Params) error
	// Restart stops any run and restores the current input.
	Restart()
}

// preparer builds the initial state and the traced procedure for p.
type preparer[S engine.Cloner[S]] func(p Params) (S, engine.Procedure[S], error)

type instance[S engine.Cloner[S]] struct {
	*engine.Binding[S]

	spec    *Spec
	prepare preparer[S]

	mu      sync.Mutex
	params  Params
	initial S
}

func opener[S engine.Cloner[S]](spec *Spec, prepare preparer[S]) func(Params, engine.Options) (Instance, error) {
	return func(p Params, opts engine.Options) (Instance, error) {
		s, proc, err := prepare(p)
		if err != nil {
			return nil, err
		}
		ctrl := engine.NewController(s.Clone(), opts)
		return &instance[S]{
			Binding: engine.Bind(ctrl, proc),
			spec:    spec,
			prepare: prepare,
			params:  maps.Clone(p),
			initial: s,
		}, nil
	}
}

func (in *instance[S]) Spec() *Spec { return in.spec }

func (in *instance[S]) Params() Params {
	in.mu.Lock()
	defer in.mu.Unlock()
	return maps.Clone(in.params)
}

func (in *instance[S]) Reset(p Params) error {
	s, proc, err := in.prepare(p)
	if err != nil {
		return err
	}
	in.mu.Lock()
	in.params = maps.Clone(p)
	in.initial = s
	in.mu.Unlock()
	in.Rebind(s.Clone(), proc)
	return nil
}

func (in *instance[S]) Restart() {
	in.mu.Lock()
	s := in.initial.Clone()
	in.mu.Unlock()
	in.Controller.Reset(s)
}

// define registers a procedure whose state type is S.
func define[S engine.Cloner[S]](spec Spec, prepare preparer[S]) *Spec {
	s := &spec
	s.open = opener(s, prepare)
	register(s)
	return s
}
