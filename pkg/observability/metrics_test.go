package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/news2"
	"github.com/aretw0/carepath/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())

	var chained int
	hooks := m.Hooks(domain.LifecycleHooks{
		OnTerminal: func(context.Context, *domain.NodeEvent) { chained++ },
	})

	ctx := context.Background()
	hooks.OnNodeEnter(ctx, &domain.NodeEvent{PathwayID: "aom", NodeID: "red-flags", Kind: domain.KindDecision})
	hooks.OnNodeEnter(ctx, &domain.NodeEvent{PathwayID: "aom", NodeID: "red-flags", Kind: domain.KindDecision})
	hooks.OnTerminal(ctx, &domain.NodeEvent{PathwayID: "aom", NodeID: "amoxicillin", Kind: domain.KindTreatment})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("aom", "red-flags")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("aom", "amoxicillin", "treatment")))
	assert.Equal(t, 1, chained)
}

func TestMetrics_ObserveNEWS2(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveNEWS2(news2.Result{TotalScore: 3, ClinicalRisk: news2.RiskMedium, RedFlag: true})
	m.ObserveNEWS2(news2.Result{TotalScore: 0, ClinicalRisk: news2.RiskLow})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Assessments.WithLabelValues("medium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Assessments.WithLabelValues("low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RedFlags))

	count, err := testutil.GatherAndCount(reg, "carepath_news2_total_score")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_Middleware(t *testing.T) {
	m := observability.NewMetrics(nil)
	handler := m.Middleware(func(*http.Request) string { return "/pathways/{id}" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pathways/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/pathways/{id}", "404")))
}
