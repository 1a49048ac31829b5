package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bmu-faultfinder/internal/catalog"
	"github.com/yungbote/bmu-faultfinder/internal/faultflow"
	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/platform/apierr"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

func newCatalogService(t *testing.T) CatalogService {
	t.Helper()
	store, err := catalog.Default()
	require.NoError(t, err)
	return NewCatalogService(store, logger.Nop(), observability.NewMetrics())
}

func TestListFilters(t *testing.T) {
	svc := newCatalogService(t)

	assert.Len(t, svc.ListModels(), 3)
	assert.Len(t, svc.ListSubsystems(""), 5)

	var subs []string
	for _, s := range svc.ListSubsystems("gondola-g1") {
		subs = append(subs, s.ID)
	}
	assert.Equal(t, []string{"travel", "power"}, subs)

	syms := svc.ListSymptoms("hoist")
	require.Len(t, syms, 1)
	assert.Equal(t, "hoist-no-lift", syms[0].ID)
	assert.Len(t, svc.ListSymptoms(""), 4)
}

func TestSearchComponentsEncoder(t *testing.T) {
	svc := newCatalogService(t)

	got := svc.SearchComponents(ComponentFilter{Query: "encoder"})
	require.Len(t, got, 1)
	assert.Equal(t, "hoist-encoder", got[0].ID)

	// part number and location, any case
	assert.Len(t, svc.SearchComponents(ComponentFilter{Query: "alm-hst"}), 1)
	assert.Len(t, svc.SearchComponents(ComponentFilter{Query: "TAIL SHAFT"}), 1)
}

func TestSearchComponentsTermMaySpanFields(t *testing.T) {
	svc := newCatalogService(t)

	// part number tail followed by the start of the location
	got := svc.SearchComponents(ComponentFilter{Query: "lim-01 mounted"})
	require.Len(t, got, 1)
	assert.Equal(t, "travel-limit", got[0].ID)

	got = svc.SearchComponents(ComponentFilter{Query: "switch alm-trl"})
	require.Len(t, got, 1)
	assert.Equal(t, "travel-limit", got[0].ID)
}

func TestSearchComponentsFiltersAreConjunctive(t *testing.T) {
	svc := newCatalogService(t)

	assert.Len(t, svc.SearchComponents(ComponentFilter{}), 5)
	assert.Len(t, svc.SearchComponents(ComponentFilter{ModelID: "alimak-a1"}), 3)
	assert.Len(t, svc.SearchComponents(ComponentFilter{ModelID: "alimak-a1", SubsystemID: "travel"}), 2)
	assert.Len(t, svc.SearchComponents(ComponentFilter{ModelID: "alimak-a1", SubsystemID: "travel", Query: "contactor"}), 1)
	assert.Empty(t, svc.SearchComponents(ComponentFilter{ModelID: "gondola-g1", Query: "encoder"}))
}

func TestGetComponent(t *testing.T) {
	svc := newCatalogService(t)
	c, err := svc.GetComponent("pendant-cable")
	require.NoError(t, err)
	assert.Equal(t, "GND-PEN-07", c.PartNumber)

	_, err = svc.GetComponent("nope")
	assert.True(t, apierr.IsNotFound(err))
}

func TestResolveFlowsExpandsSafety(t *testing.T) {
	svc := newCatalogService(t)
	flows, err := svc.ResolveFlows(context.Background(), faultflow.Query{ModelID: "alimak-a1", SubsystemID: "travel", SymptomID: "trolley-stopped"})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "travel-no-move", flows[0].ID)
	assert.Equal(t, "Forward travel limit switch", flows[0].LikelyCauses[0].Component)
	require.Len(t, flows[0].Safety, 2)
	assert.Contains(t, flows[0].Safety[0], "lock-off BMU main power")

	raw, err := json.Marshal(flows[0])
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	safety := doc["safety"].([]any)
	assert.Contains(t, safety[0], "Isolate")
	steps := doc["steps"].([]any)
	assert.Nil(t, steps[3].(map[string]any)["nextOnPass"])
}

func TestResolveFlowsEmptyAndInvalid(t *testing.T) {
	svc := newCatalogService(t)

	flows, err := svc.ResolveFlows(context.Background(), faultflow.Query{ModelID: "gondola-g1", SubsystemID: "travel", SymptomID: "trolley-stopped"})
	require.NoError(t, err)
	assert.NotNil(t, flows)
	assert.Empty(t, flows)

	_, err = svc.ResolveFlows(context.Background(), faultflow.Query{ModelID: "alimak-a1", SubsystemID: "travel"})
	assert.True(t, apierr.IsValidation(err))

	_, err = svc.FirstFlow(context.Background(), faultflow.Query{SubsystemID: "slew", SymptomID: "trolley-stopped"})
	assert.True(t, apierr.IsNotFound(err))
}

func TestAnalyzeWrapsResolution(t *testing.T) {
	svc := newCatalogService(t)
	a, err := svc.Analyze(context.Background(), faultflow.Query{SubsystemID: " power ", SymptomID: "estop-stuck"})
	require.NoError(t, err)
	assert.Equal(t, "power", a.Query.SubsystemID)
	assert.Equal(t, 1, a.Matched)
	assert.Equal(t, "estop-loop", a.Flows[0].ID)
}

func TestGetFlowAndNextStep(t *testing.T) {
	svc := newCatalogService(t)
	ctx := context.Background()

	d, err := svc.GetFlow("hoist-no-raise")
	require.NoError(t, err)
	assert.Equal(t, "hstep1", d.Presentation.FirstStepID)
	assert.Len(t, d.Flow.Safety, 2)

	_, err = svc.GetFlow("missing")
	assert.True(t, apierr.IsNotFound(err))

	tr, err := svc.NextStep(ctx, "hoist-no-raise", "hstep2", "fail")
	require.NoError(t, err)
	assert.Equal(t, faultflow.KindResolved, tr.Kind)
	assert.Equal(t, "hres-encoder", tr.ResolutionKey)

	_, err = svc.NextStep(ctx, "hoist-no-raise", "hstep2", "sideways")
	assert.True(t, apierr.IsValidation(err))
	_, err = svc.NextStep(ctx, "hoist-no-raise", "", "pass")
	assert.True(t, apierr.IsValidation(err))
	_, err = svc.NextStep(ctx, "hoist-no-raise", "ghost", "pass")
	assert.True(t, apierr.IsNotFound(err))
	_, err = svc.NextStep(ctx, "ghost-flow", "s1", "pass")
	assert.True(t, apierr.IsNotFound(err))
}

func TestOfflineDatasetHasEveryCollection(t *testing.T) {
	ds := newCatalogService(t).OfflineDataset()
	raw, err := json.Marshal(ds)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"models", "subsystems", "symptoms", "components", "faultFlows", "safetyNotes"} {
		assert.Contains(t, doc, key)
	}
	assert.Len(t, ds.FaultFlows, 3)
}
