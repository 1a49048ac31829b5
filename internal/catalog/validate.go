package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	types "github.com/yungbote/bmu-faultfinder/internal/domain/catalog"
	pkgerrors "github.com/yungbote/bmu-faultfinder/internal/pkg/errors"
)

type Problem struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %q: %s", p.Entity, p.ID, p.Message)
}

// ValidationError lists every broken dataset invariant.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("catalog invalid (%d problems): %s", len(e.Problems), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return pkgerrors.ErrConfiguration }

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required fields, id uniqueness and every cross reference
// of the dataset, including step chain targets and acyclicity.
func (s *Store) Validate() error {
	var problems []Problem
	add := func(entity, id, format string, args ...interface{}) {
		problems = append(problems, Problem{Entity: entity, ID: id, Message: fmt.Sprintf(format, args...)})
	}

	if err := structValidator.Struct(s.dataset); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				add("field", fe.Namespace(), "failed %q", fe.Tag())
			}
		} else {
			add("dataset", "", "%v", err)
		}
	}

	checkUnique := func(entity string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				add(entity, id, "duplicate id")
			}
			seen[id] = true
		}
	}
	checkUnique("model", collect(s.dataset.Models, func(m types.Model) string { return m.ID }))
	checkUnique("subsystem", collect(s.dataset.Subsystems, func(v types.Subsystem) string { return v.ID }))
	checkUnique("symptom", collect(s.dataset.Symptoms, func(v types.Symptom) string { return v.ID }))
	checkUnique("component", collect(s.dataset.Components, func(v types.Component) string { return v.ID }))
	checkUnique("safetyNote", collect(s.dataset.SafetyNotes, func(v types.SafetyNote) string { return v.ID }))
	checkUnique("faultFlow", collect(s.dataset.FaultFlows, func(v types.FaultFlow) string { return v.ID }))

	for _, sub := range s.dataset.Subsystems {
		if len(sub.ModelIDs) == 0 {
			add("subsystem", sub.ID, "no models")
		}
		for _, mid := range sub.ModelIDs {
			if _, ok := s.Model(mid); !ok {
				add("subsystem", sub.ID, "unknown model %q", mid)
			}
		}
	}

	for _, sym := range s.dataset.Symptoms {
		if _, ok := s.Subsystem(sym.SubsystemID); !ok {
			add("symptom", sym.ID, "unknown subsystem %q", sym.SubsystemID)
		}
	}

	for _, c := range s.dataset.Components {
		if _, ok := s.Model(c.ModelID); !ok {
			add("component", c.ID, "unknown model %q", c.ModelID)
		}
		if _, ok := s.Subsystem(c.SubsystemID); !ok {
			add("component", c.ID, "unknown subsystem %q", c.SubsystemID)
		}
	}

	for _, f := range s.dataset.FaultFlows {
		s.validateFlow(f, add)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (s *Store) validateFlow(f types.FaultFlow, add func(entity, id, format string, args ...interface{})) {
	sub, subOK := s.Subsystem(f.SubsystemID)
	if !subOK {
		add("faultFlow", f.ID, "unknown subsystem %q", f.SubsystemID)
	}
	applies := false
	for _, mid := range f.ModelIDs {
		if _, ok := s.Model(mid); !ok {
			add("faultFlow", f.ID, "unknown model %q", mid)
			continue
		}
		if subOK && sub.AppliesTo(mid) {
			applies = true
		}
	}
	if subOK && !applies {
		add("faultFlow", f.ID, "subsystem %q applies to none of its models", f.SubsystemID)
	}
	if sym, ok := s.Symptom(f.SymptomID); !ok {
		add("faultFlow", f.ID, "unknown symptom %q", f.SymptomID)
	} else if sym.SubsystemID != f.SubsystemID {
		add("faultFlow", f.ID, "symptom %q belongs to subsystem %q, not %q", f.SymptomID, sym.SubsystemID, f.SubsystemID)
	}
	for _, nid := range f.Safety {
		if _, ok := s.SafetyNote(nid); !ok {
			add("faultFlow", f.ID, "unknown safety note %q", nid)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(f.Resolutions)) {
		if strings.TrimSpace(f.Resolutions[key]) == "" {
			add("faultFlow", f.ID, "resolution %q has no text", key)
		}
	}

	stepIDs := make(map[string]bool, len(f.Steps))
	for _, st := range f.Steps {
		if stepIDs[st.ID] {
			add("faultFlow", f.ID, "duplicate step %q", st.ID)
		}
		stepIDs[st.ID] = true
	}
	edges := make(map[string][]string, len(f.Steps))
	for _, st := range f.Steps {
		for _, ref := range []types.StepRef{st.NextOnPass, st.NextOnFail} {
			if ref.IsTerminal() {
				continue
			}
			if _, ok := f.Resolutions[string(ref)]; ok {
				continue
			}
			if !stepIDs[string(ref)] {
				add("faultFlow", f.ID, "step %q points at undefined %q", st.ID, ref)
				continue
			}
			edges[st.ID] = append(edges[st.ID], string(ref))
		}
	}
	if cyc := findCycle(f.Steps, edges); cyc != "" {
		add("faultFlow", f.ID, "step chain cycles through %q", cyc)
	}
}

// findCycle returns a step id on a cycle, or "".
func findCycle(steps []types.Step, edges map[string][]string) string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(steps))
	var visit func(id string) string
	visit = func(id string) string {
		color[id] = grey
		for _, next := range edges[id] {
			switch color[next] {
			case grey:
				return next
			case white:
				if c := visit(next); c != "" {
					return c
				}
			}
		}
		color[id] = black
		return ""
	}
	for _, st := range steps {
		if color[st.ID] == white {
			if c := visit(st.ID); c != "" {
				return c
			}
		}
	}
	return ""
}

func collect[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}
