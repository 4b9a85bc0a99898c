package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSearch(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	okBefore := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("widget", OutcomeOK))
	codeBefore := testutil.ToFloat64(SearchErrorsTotal.WithLabelValues("widget", "too_many_items"))

	ObserveSearch("widget", OutcomeOK, nil, 3, time.Millisecond)
	ObserveSearch("widget", OutcomeLimited, []string{"too_many_items"}, 500, time.Millisecond)
	ObserveSearch("widget", OutcomeError, nil, 0, time.Millisecond)

	if got := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("widget", OutcomeOK)); got != okBefore+1 {
		t.Errorf("ok searches = %f, want %f", got, okBefore+1)
	}
	if got := testutil.ToFloat64(SearchErrorsTotal.WithLabelValues("widget", "too_many_items")); got != codeBefore+1 {
		t.Errorf("too_many_items = %f, want %f", got, codeBefore+1)
	}
	if n := testutil.CollectAndCount(SearchMatches); n == 0 {
		t.Error("expected search_total_count observations")
	}
	if n := testutil.CollectAndCount(SearchDuration); n == 0 {
		t.Error("expected search_duration_seconds observations")
	}
}
