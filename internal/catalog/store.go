package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/bmu-faultfinder/internal/domain/catalog"
)

//go:embed data/catalog.yaml
var embedded []byte

// Store is the read-only reference catalog. Slices keep declaration order;
// the maps are id indexes over the same values.
type Store struct {
	raw     []byte
	dataset types.Dataset

	models      map[string]int
	subsystems  map[string]int
	symptoms    map[string]int
	components  map[string]int
	safetyNotes map[string]int
	faultFlows  map[string]int
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the store decoded from the embedded dataset.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = Load(embedded)
	})
	return defaultStore, defaultErr
}

func Load(raw []byte) (*Store, error) {
	var ds types.Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(ds, append([]byte(nil), raw...)), nil
}

// New indexes an already decoded dataset. raw may be nil.
func New(ds types.Dataset, raw []byte) *Store {
	s := &Store{
		raw:         raw,
		dataset:     ds,
		models:      make(map[string]int, len(ds.Models)),
		subsystems:  make(map[string]int, len(ds.Subsystems)),
		symptoms:    make(map[string]int, len(ds.Symptoms)),
		components:  make(map[string]int, len(ds.Components)),
		safetyNotes: make(map[string]int, len(ds.SafetyNotes)),
		faultFlows:  make(map[string]int, len(ds.FaultFlows)),
	}
	// first declaration wins on duplicate ids; Validate reports them
	for i, m := range ds.Models {
		indexOnce(s.models, m.ID, i)
	}
	for i, sub := range ds.Subsystems {
		indexOnce(s.subsystems, sub.ID, i)
	}
	for i, sym := range ds.Symptoms {
		indexOnce(s.symptoms, sym.ID, i)
	}
	for i, c := range ds.Components {
		indexOnce(s.components, c.ID, i)
	}
	for i, n := range ds.SafetyNotes {
		indexOnce(s.safetyNotes, n.ID, i)
	}
	for i, f := range ds.FaultFlows {
		indexOnce(s.faultFlows, f.ID, i)
	}
	return s
}

func indexOnce(idx map[string]int, id string, i int) {
	if _, ok := idx[id]; !ok {
		idx[id] = i
	}
}

// Raw returns a copy of the YAML the store was loaded from, or nil for a
// store built with New from a decoded dataset.
func (s *Store) Raw() []byte {
	if s.raw == nil {
		return nil
	}
	return append([]byte(nil), s.raw...)
}

// Dataset returns the full document. Callers must not mutate it.
func (s *Store) Dataset() types.Dataset { return s.dataset }

func (s *Store) Models() []types.Model { return s.dataset.Models }
func (s *Store) Subsystems() []types.Subsystem { return s.dataset.Subsystems }
func (s *Store) Symptoms() []types.Symptom { return s.dataset.Symptoms }
func (s *Store) Components() []types.Component { return s.dataset.Components }
func (s *Store) SafetyNotes() []types.SafetyNote { return s.dataset.SafetyNotes }
func (s *Store) FaultFlows() []types.FaultFlow { return s.dataset.FaultFlows }

func (s *Store) Model(id string) (types.Model, bool) {
	i, ok := s.models[id]
	if !ok {
		return types.Model{}, false
	}
	return s.dataset.Models[i], true
}

func (s *Store) Subsystem(id string) (types.Subsystem, bool) {
	i, ok := s.subsystems[id]
	if !ok {
		return types.Subsystem{}, false
	}
	return s.dataset.Subsystems[i], true
}

func (s *Store) Symptom(id string) (types.Symptom, bool) {
	i, ok := s.symptoms[id]
	if !ok {
		return types.Symptom{}, false
	}
	return s.dataset.Symptoms[i], true
}

func (s *Store) Component(id string) (types.Component, bool) {
	i, ok := s.components[id]
	if !ok {
		return types.Component{}, false
	}
	return s.dataset.Components[i], true
}

func (s *Store) SafetyNote(id string) (types.SafetyNote, bool) {
	i, ok := s.safetyNotes[id]
	if !ok {
		return types.SafetyNote{}, false
	}
	return s.dataset.SafetyNotes[i], true
}

func (s *Store) FaultFlow(id string) (types.FaultFlow, bool) {
	i, ok := s.faultFlows[id]
	if !ok {
		return types.FaultFlow{}, false
	}
	return s.dataset.FaultFlows[i], true
}
