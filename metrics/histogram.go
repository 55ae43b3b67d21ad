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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Histogram interface {
	prometheus.Histogram
	// UpdateDuration observes the seconds elapsed since startTime.
	UpdateDuration(startTime time.Time)
}

type histogram struct {
	prometheus.Histogram
}

func (h *histogram) UpdateDuration(startTime time.Time) {
	h.Observe(time.Since(startTime).Seconds())
}
