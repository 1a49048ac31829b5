package faultflow

import (
	"strings"

	types "github.com/yungbote/bmu-faultfinder/internal/domain/catalog"
	"github.com/yungbote/bmu-faultfinder/internal/platform/apierr"
)

// Query selects fault flows. ModelID is optional.
type Query struct {
	ModelID     string `form:"modelId" json:"modelId,omitempty"`
	SubsystemID string `form:"subsystemId" json:"subsystemId"`
	SymptomID   string `form:"symptomId" json:"symptomId"`
}

// Normalize trims surrounding whitespace from every field.
func (q Query) Normalize() Query {
	return Query{
		ModelID:     strings.TrimSpace(q.ModelID),
		SubsystemID: strings.TrimSpace(q.SubsystemID),
		SymptomID:   strings.TrimSpace(q.SymptomID),
	}
}

// Validate rejects queries missing a required id.
func (q Query) Validate() error {
	var missing []string
	if q.SubsystemID == "" {
		missing = append(missing, "subsystemId")
	}
	if q.SymptomID == "" {
		missing = append(missing, "symptomId")
	}
	if len(missing) > 0 {
		return apierr.Validation("missing required query parameter(s) %s", strings.Join(missing, ", "))
	}
	return nil
}

// Matches applies the lookup rule to a single flow.
func (q Query) Matches(f types.FaultFlow) bool {
	if q.ModelID != "" && !f.AppliesTo(q.ModelID) {
		return false
	}
	return f.SubsystemID == q.SubsystemID && f.SymptomID == q.SymptomID
}

// FlowSource is the slice of the catalog the resolver reads.
type FlowSource interface {
	FaultFlows() []types.FaultFlow
}

type Resolver struct {
	src FlowSource
}

func NewResolver(src FlowSource) *Resolver {
	return &Resolver{src: src}
}

// Resolve returns every matching flow in catalog order. No match yields an
// empty, non-nil slice. The query is used as given; callers validate it.
func (r *Resolver) Resolve(q Query) []types.FaultFlow {
	out := make([]types.FaultFlow, 0, 1)
	for _, f := range r.src.FaultFlows() {
		if q.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}
