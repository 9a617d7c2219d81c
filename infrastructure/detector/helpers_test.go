package detector

import (
	"sync"
	"time"
)

type metricRecord struct {
	name   string
	value  float64
	labels map[string]string
}

// recordingCollector captures everything reported through
// ports.MetricsCollector.
type recordingCollector struct {
	mu         sync.Mutex
	counters   []metricRecord
	gauges     []metricRecord
	histograms []metricRecord
}

func (c *recordingCollector) RecordLatency(operation string, d time.Duration, labels map[string]string) {
	c.RecordHistogram(operation, d.Seconds(), labels)
}

func (c *recordingCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = append(c.counters, metricRecord{metric, value, copyLabels(labels)})
}

func (c *recordingCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges = append(c.gauges, metricRecord{metric, value, copyLabels(labels)})
}

func (c *recordingCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histograms = append(c.histograms, metricRecord{metric, value, copyLabels(labels)})
}

func (c *recordingCollector) counter(name string) []metricRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filterRecords(c.counters, name)
}

func (c *recordingCollector) gauge(name string) []metricRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filterRecords(c.gauges, name)
}

func (c *recordingCollector) histogram(name string) []metricRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filterRecords(c.histograms, name)
}

func filterRecords(records []metricRecord, name string) []metricRecord {
	var out []metricRecord
	for _, r := range records {
		if r.name == name {
			out = append(out, r)
		}
	}
	return out
}

func copyLabels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
