package faultflow

import (
	"errors"
	"fmt"
	"strings"

	types "github.com/yungbote/bmu-faultfinder/internal/domain/catalog"
	pkgerrors "github.com/yungbote/bmu-faultfinder/internal/pkg/errors"
)

type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

func ParseOutcome(raw string) (Outcome, error) {
	switch Outcome(strings.ToLower(strings.TrimSpace(raw))) {
	case OutcomePass:
		return OutcomePass, nil
	case OutcomeFail:
		return OutcomeFail, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, raw)
}

var (
	ErrInvalidOutcome  = fmt.Errorf("outcome must be pass or fail: %w", pkgerrors.ErrInvalidArgument)
	ErrUnknownStep     = fmt.Errorf("unknown step: %w", pkgerrors.ErrNotFound)
	ErrEmptyFlow       = fmt.Errorf("flow has no steps: %w", pkgerrors.ErrConfiguration)
	ErrUndefinedTarget = fmt.Errorf("step target is neither a step nor a resolution: %w", pkgerrors.ErrConfiguration)
	ErrCyclicFlow      = fmt.Errorf("step chain revisits a step: %w", pkgerrors.ErrConfiguration)
)

type TransitionKind string

const (
	// KindContinue moves to another step of the same flow.
	KindContinue TransitionKind = "continue"
	// KindResolved ends on a fail branch with resolution text.
	KindResolved TransitionKind = "resolved"
	// KindTerminal ends the diagnosis with no further action.
	KindTerminal TransitionKind = "terminal"
	// KindEscalate ends a fail branch that has neither a next step nor a
	// resolution; the technician has to escalate.
	KindEscalate TransitionKind = "escalate"
)

// Transition is the result of applying an outcome to a step. Only the fields
// for its Kind are set.
type Transition struct {
	Kind          TransitionKind `json:"kind"`
	From          string         `json:"from"`
	Outcome       Outcome        `json:"outcome"`
	StepID        string         `json:"stepId,omitempty"`
	Step          *types.Step    `json:"step,omitempty"`
	ResolutionKey string         `json:"resolutionKey,omitempty"`
	Resolution    string         `json:"resolution,omitempty"`
}

func (t Transition) Done() bool { return t.Kind != KindContinue }

// Presentation is the linear view of a flow. Causes and checks are
// informational and do not drive traversal.
type Presentation struct {
	FlowID       string              `json:"flowId"`
	FirstStepID  string              `json:"firstStepId"`
	LikelyCauses []types.LikelyCause `json:"likelyCauses"`
	Checks       []types.Check       `json:"checks"`
	Steps        []types.Step        `json:"steps"`
	Resolutions  map[string]string   `json:"resolutions"`
}

func Present(f types.FaultFlow) Presentation {
	p := Presentation{
		FlowID:       f.ID,
		LikelyCauses: f.LikelyCauses,
		Checks:       f.Checks,
		Steps:        f.Steps,
		Resolutions:  f.Resolutions,
	}
	if len(f.Steps) > 0 {
		p.FirstStepID = f.Steps[0].ID
	}
	return p
}

// Next applies one outcome to currentStepID.
func Next(f types.FaultFlow, currentStepID string, outcome Outcome) (Transition, error) {
	if outcome != OutcomePass && outcome != OutcomeFail {
		return Transition{}, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}
	cur, ok := f.Step(currentStepID)
	if !ok {
		return Transition{}, fmt.Errorf("flow %s step %q: %w", f.ID, currentStepID, ErrUnknownStep)
	}

	tr := Transition{From: cur.ID, Outcome: outcome}
	target := cur.NextOnPass
	if outcome == OutcomeFail {
		target = cur.NextOnFail
	}

	if target.IsTerminal() {
		if outcome == OutcomePass {
			tr.Kind = KindTerminal
		} else {
			tr.Kind = KindEscalate
		}
		return tr, nil
	}
	if text, ok := f.Resolution(string(target)); ok {
		tr.Kind = KindResolved
		tr.ResolutionKey = string(target)
		tr.Resolution = text
		return tr, nil
	}
	if next, ok := f.Step(string(target)); ok {
		tr.Kind = KindContinue
		tr.StepID = next.ID
		tr.Step = &next
		return tr, nil
	}
	return Transition{}, fmt.Errorf("flow %s step %q -> %q: %w", f.ID, cur.ID, target, ErrUndefinedTarget)
}

// Trail records a walk from the first step to an absorbing state.
type Trail struct {
	FlowID      string       `json:"flowId"`
	Visited     []string     `json:"visited"`
	Transitions []Transition `json:"transitions"`
	Final       Transition   `json:"final"`
}

// Walk starts at the first step and applies outcomes in order, defaulting
// to pass once they run out. It never takes more than len(f.Steps)
// transitions and fails with ErrCyclicFlow rather than revisiting a step.
func Walk(f types.FaultFlow, outcomes []Outcome) (Trail, error) {
	trail := Trail{FlowID: f.ID}
	if len(f.Steps) == 0 {
		return trail, fmt.Errorf("flow %s: %w", f.ID, ErrEmptyFlow)
	}

	seen := make(map[string]bool, len(f.Steps))
	current := f.Steps[0].ID
	for i := 0; i < len(f.Steps); i++ {
		if seen[current] {
			return trail, fmt.Errorf("flow %s at %q: %w", f.ID, current, ErrCyclicFlow)
		}
		seen[current] = true
		trail.Visited = append(trail.Visited, current)

		outcome := OutcomePass
		if i < len(outcomes) {
			outcome = outcomes[i]
		}
		tr, err := Next(f, current, outcome)
		if err != nil {
			return trail, err
		}
		trail.Transitions = append(trail.Transitions, tr)
		if tr.Done() {
			trail.Final = tr
			return trail, nil
		}
		current = tr.StepID
	}
	return trail, fmt.Errorf("flow %s exceeded %d transitions at %q: %w", f.ID, len(f.Steps), current, ErrCyclicFlow)
}

// IsConfigError reports whether err comes from malformed flow data rather
// than from the caller.
func IsConfigError(err error) bool {
	return errors.Is(err, pkgerrors.ErrConfiguration)
}
