package tripauth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, time.Millisecond)

	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics must not count")
	}
	s := m.Snapshot()
	if len(s.Counters) != 0 || len(s.Histograms) != 0 {
		t.Fatalf("disabled snapshot must be empty: %+v", s)
	}
}

func TestMetricsCountersConcurrent(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricRefreshSuccess); got != 8000 {
		t.Fatalf("expected 8000, got %d", got)
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricLoginLatency, 2*time.Millisecond)   // bucket 0
	m.Observe(MetricLoginLatency, 40*time.Millisecond)  // bucket 3
	m.Observe(MetricLoginLatency, 900*time.Millisecond) // bucket 7

	s := m.Snapshot()
	buckets, ok := s.Histograms[MetricLoginLatency]
	if !ok {
		t.Fatal("latency histogram missing from snapshot")
	}
	if buckets[0] != 1 || buckets[3] != 1 || buckets[7] != 1 {
		t.Fatalf("unexpected bucket layout %v", buckets)
	}

	// Observations on non-histogram IDs are dropped.
	m.Observe(MetricLoginSuccess, time.Millisecond)
	if _, ok := m.Snapshot().Histograms[MetricLoginSuccess]; ok {
		t.Fatal("counter IDs must not grow histograms")
	}
}

func TestEngineFlowsIncrementCounters(t *testing.T) {
	te := newTestEngine(t, nil)

	registerAndVerify(t, te, aliceRequest())

	snap := te.engine.MetricsSnapshot()
	if snap.Counters[MetricRegisterRequest] == 0 {
		t.Fatal("register request counter not incremented")
	}
	if snap.Counters[MetricVerifySuccess] != 1 {
		t.Fatalf("expected one verify success, got %d", snap.Counters[MetricVerifySuccess])
	}
}
