package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/bmu-faultfinder/internal/catalog"
	types "github.com/yungbote/bmu-faultfinder/internal/domain"
	"github.com/yungbote/bmu-faultfinder/internal/faultflow"
	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/platform/apierr"
	"github.com/yungbote/bmu-faultfinder/internal/platform/ctxutil"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/bmu-faultfinder/internal/services")

// ComponentFilter narrows a parts search. Empty fields do not filter.
type ComponentFilter struct {
	ModelID     string `form:"modelId"`
	SubsystemID string `form:"subsystemId"`
	Query       string `form:"q"`
}

// FlowView is a fault flow with its safety ids expanded to note text.
type FlowView struct {
	types.FaultFlow
	Safety []string `json:"safety"`
}

type FlowDetail struct {
	Flow         FlowView               `json:"flow"`
	Presentation faultflow.Presentation `json:"presentation"`
}

// Analysis wraps a static resolution for callers of the analysis endpoint.
type Analysis struct {
	Query   faultflow.Query `json:"query"`
	Matched int             `json:"matched"`
	Flows   []FlowView      `json:"flows"`
}

type CatalogService interface {
	ListModels() []types.Model
	ListSubsystems(modelID string) []types.Subsystem
	ListSymptoms(subsystemID string) []types.Symptom
	SearchComponents(f ComponentFilter) []types.Component
	GetComponent(id string) (types.Component, error)

	ResolveFlows(ctx context.Context, q faultflow.Query) ([]FlowView, error)
	FirstFlow(ctx context.Context, q faultflow.Query) (FlowView, error)
	Analyze(ctx context.Context, q faultflow.Query) (Analysis, error)
	GetFlow(id string) (FlowDetail, error)
	NextStep(ctx context.Context, flowID, stepID, outcome string) (faultflow.Transition, error)

	OfflineDataset() types.Dataset
}

type catalogService struct {
	store    *catalog.Store
	resolver *faultflow.Resolver
	log      *logger.Logger
	metrics  *observability.Metrics
}

func NewCatalogService(store *catalog.Store, baseLog *logger.Logger, metrics *observability.Metrics) CatalogService {
	return &catalogService{
		store:    store,
		resolver: faultflow.NewResolver(store),
		log:      baseLog.With("service", "CatalogService"),
		metrics:  metrics,
	}
}

func (s *catalogService) ListModels() []types.Model {
	return s.store.Models()
}

func (s *catalogService) ListSubsystems(modelID string) []types.Subsystem {
	modelID = strings.TrimSpace(modelID)
	all := s.store.Subsystems()
	if modelID == "" {
		return all
	}
	out := make([]types.Subsystem, 0, len(all))
	for _, sub := range all {
		if sub.AppliesTo(modelID) {
			out = append(out, sub)
		}
	}
	return out
}

func (s *catalogService) ListSymptoms(subsystemID string) []types.Symptom {
	subsystemID = strings.TrimSpace(subsystemID)
	all := s.store.Symptoms()
	if subsystemID == "" {
		return all
	}
	out := make([]types.Symptom, 0, len(all))
	for _, sym := range all {
		if sym.SubsystemID == subsystemID {
			out = append(out, sym)
		}
	}
	return out
}

func (s *catalogService) SearchComponents(f ComponentFilter) []types.Component {
	modelID := strings.TrimSpace(f.ModelID)
	subsystemID := strings.TrimSpace(f.SubsystemID)
	term := strings.ToLower(strings.TrimSpace(f.Query))

	all := s.store.Components()
	out := make([]types.Component, 0, len(all))
	for _, c := range all {
		if modelID != "" && c.ModelID != modelID {
			continue
		}
		if subsystemID != "" && c.SubsystemID != subsystemID {
			continue
		}
		if term != "" && !componentMatches(c, term) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// componentMatches searches name, part number and location joined by
// spaces, so a term may span fields. term is already lowercased.
func componentMatches(c types.Component, term string) bool {
	haystack := strings.ToLower(c.Name + " " + c.PartNumber + " " + c.Location)
	return strings.Contains(haystack, term)
}

func (s *catalogService) GetComponent(id string) (types.Component, error) {
	c, ok := s.store.Component(strings.TrimSpace(id))
	if !ok {
		return types.Component{}, apierr.NotFound("component %q", id)
	}
	return c, nil
}

func (s *catalogService) ResolveFlows(ctx context.Context, q faultflow.Query) ([]FlowView, error) {
	_, span := tracer.Start(ctx, "CatalogService.ResolveFlows")
	defer span.End()

	q = q.Normalize()
	span.SetAttributes(
		attribute.String("bmu.model_id", q.ModelID),
		attribute.String("bmu.subsystem_id", q.SubsystemID),
		attribute.String("bmu.symptom_id", q.SymptomID),
	)
	if err := q.Validate(); err != nil {
		s.metrics.IncFlowResolve("invalid")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	flows := s.resolver.Resolve(q)
	out := make([]FlowView, 0, len(flows))
	for _, f := range flows {
		out = append(out, s.view(f))
	}
	span.SetAttributes(attribute.Int("bmu.flows_matched", len(out)))
	if len(out) == 0 {
		s.metrics.IncFlowResolve("miss")
		s.log.Debug("no fault flow matched", append(ctxutil.LogFields(ctx), "query", q)...)
	} else {
		s.metrics.IncFlowResolve("hit")
	}
	return out, nil
}

func (s *catalogService) FirstFlow(ctx context.Context, q faultflow.Query) (FlowView, error) {
	flows, err := s.ResolveFlows(ctx, q)
	if err != nil {
		return FlowView{}, err
	}
	if len(flows) == 0 {
		return FlowView{}, apierr.NotFound("no fault flow for subsystem %q symptom %q", q.SubsystemID, q.SymptomID)
	}
	return flows[0], nil
}

func (s *catalogService) Analyze(ctx context.Context, q faultflow.Query) (Analysis, error) {
	flows, err := s.ResolveFlows(ctx, q)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{Query: q.Normalize(), Matched: len(flows), Flows: flows}, nil
}

func (s *catalogService) GetFlow(id string) (FlowDetail, error) {
	f, ok := s.store.FaultFlow(strings.TrimSpace(id))
	if !ok {
		return FlowDetail{}, apierr.NotFound("fault flow %q", id)
	}
	return FlowDetail{Flow: s.view(f), Presentation: faultflow.Present(f)}, nil
}

func (s *catalogService) NextStep(ctx context.Context, flowID, stepID, outcome string) (faultflow.Transition, error) {
	_, span := tracer.Start(ctx, "CatalogService.NextStep")
	defer span.End()
	span.SetAttributes(
		attribute.String("bmu.flow_id", flowID),
		attribute.String("bmu.step_id", stepID),
		attribute.String("bmu.outcome", outcome),
	)

	f, ok := s.store.FaultFlow(strings.TrimSpace(flowID))
	if !ok {
		return faultflow.Transition{}, apierr.NotFound("fault flow %q", flowID)
	}
	stepID = strings.TrimSpace(stepID)
	if stepID == "" {
		return faultflow.Transition{}, apierr.Validation("missing required query parameter(s) stepId")
	}
	o, err := faultflow.ParseOutcome(outcome)
	if err != nil {
		return faultflow.Transition{}, err
	}
	tr, err := faultflow.Next(f, stepID, o)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if faultflow.IsConfigError(err) {
			s.log.Error("fault flow data is inconsistent", append(ctxutil.LogFields(ctx), "flow_id", f.ID, "step_id", stepID, "error", err)...)
		}
		return faultflow.Transition{}, err
	}
	s.metrics.IncStepTransition(string(o), string(tr.Kind))
	return tr, nil
}

func (s *catalogService) OfflineDataset() types.Dataset {
	return s.store.Dataset()
}

// view expands safety ids. Unknown ids are dropped.
func (s *catalogService) view(f types.FaultFlow) FlowView {
	safety := make([]string, 0, len(f.Safety))
	for _, id := range f.Safety {
		if n, ok := s.store.SafetyNote(id); ok && n.Text != "" {
			safety = append(safety, n.Text)
		}
	}
	return FlowView{FaultFlow: f, Safety: safety}
}
