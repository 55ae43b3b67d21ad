// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Set is a group of metrics registered on its own prometheus registry.
type Set struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

func NewSet() *Set {
	return &Set{
		registry: prometheus.NewRegistry(),
		metrics:  map[string]prometheus.Collector{},
	}
}

// Registry exposes the underlying registry, e.g. for promhttp handlers.
func (s *Set) Registry() *prometheus.Registry { return s.registry }

func (s *Set) NewCounter(name string) (prometheus.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.metrics[name]; ok {
		return nil, fmt.Errorf("metric %q is already registered", name)
	}
	return s.createCounter(name)
}

func (s *Set) GetOrCreateCounter(name string) (prometheus.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.metrics[name]; ok {
		c, ok := m.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("metric %q is not a counter", name)
		}
		return c, nil
	}
	return s.createCounter(name)
}

func (s *Set) createCounter(name string) (prometheus.Counter, error) {
	fqName, labels, err := parseMetric(name)
	if err != nil {
		return nil, err
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: fqName, Help: fqName, ConstLabels: labels})
	if err := s.register(name, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Set) GetOrCreateGauge(name string) (prometheus.Gauge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.metrics[name]; ok {
		g, ok := m.(prometheus.Gauge)
		if !ok {
			return nil, fmt.Errorf("metric %q is not a gauge", name)
		}
		return g, nil
	}
	fqName, labels, err := parseMetric(name)
	if err != nil {
		return nil, err
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: fqName, Help: fqName, ConstLabels: labels})
	if err := s.register(name, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Set) GetOrCreateHistogram(name string) (prometheus.Histogram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.metrics[name]; ok {
		h, ok := m.(prometheus.Histogram)
		if !ok {
			return nil, fmt.Errorf("metric %q is not a histogram", name)
		}
		return h, nil
	}
	fqName, labels, err := parseMetric(name)
	if err != nil {
		return nil, err
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: fqName, Help: fqName, ConstLabels: labels})
	if err := s.register(name, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Set) register(name string, c prometheus.Collector) error {
	if err := s.registry.Register(c); err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	s.metrics[name] = c
	return nil
}

// WriteText writes all metrics of the set in the prometheus text exposition format.
func (s *Set) WriteText(w io.Writer) error {
	families, err := s.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the registered metric names, sorted.
func (s *Set) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.metrics))
	for name := range s.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseMetric splits foo{bar="baz",aaa="b"} into the metric name and its labels.
func parseMetric(s string) (string, prometheus.Labels, error) {
	n := strings.IndexByte(s, '{')
	if n < 0 {
		if s == "" {
			return "", nil, fmt.Errorf("empty metric name")
		}
		return s, nil, nil
	}
	name, rest := s[:n], s[n+1:]
	if name == "" {
		return "", nil, fmt.Errorf("missing metric name in %q", s)
	}
	if !strings.HasSuffix(rest, "}") {
		return "", nil, fmt.Errorf("missing closing curly brace in %q", s)
	}
	rest = rest[:len(rest)-1]
	labels := prometheus.Labels{}
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || eq+1 >= len(rest) || rest[eq+1] != '"' {
			return "", nil, fmt.Errorf("malformed label in %q", s)
		}
		key := strings.TrimSpace(rest[:eq])
		rest = rest[eq+2:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return "", nil, fmt.Errorf("missing closing quote in %q", s)
		}
		labels[key] = rest[:end]
		rest = strings.TrimPrefix(strings.TrimSpace(rest[end+1:]), ",")
		rest = strings.TrimSpace(rest)
	}
	return name, labels, nil
}
