/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package telemetry reduces the four telemetry encodings shipped by different
// agent generations into one canonical metric record. Nothing in this package
// returns an error: unparsable values become nil fields so ingestion never
// fails on agent-supplied data.
package telemetry

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

// Normalizer parses heterogeneous telemetry payloads into canonical
// percentages plus optional structured fields.
type Normalizer struct {
	logger logger.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Normalizer{logger: log}
}

// Normalize parses one telemetry submission body into a DeviceMetric for the
// given device. The raw body is kept as an opaque payload snapshot when it is
// valid JSON.
func (n *Normalizer) Normalize(deviceID string, body []byte, recordedAt time.Time) *models.DeviceMetric {
	metric := &models.DeviceMetric{
		DeviceID:   deviceID,
		RecordedAt: recordedAt,
	}

	var bag map[string]interface{}
	if err := json.Unmarshal(body, &bag); err != nil {
		n.logger.Debug().Err(err).Str("device_id", deviceID).Msg("telemetry body is not a JSON object")
		return metric
	}

	metric.Payload = models.Payload(bag)

	sub := decodeSubmission(bag)

	if sub.AgentVersion != "" {
		metric.AgentVersion = sub.AgentVersion
	}

	cpu := decodeValue(sub.CPU)
	metric.CPUPercent = n.normalizeCPU(cpu)
	metric.CPUStates = cpuStates(cpu)

	// Legacy agents send "ram"; structured agents send "memory".
	ramRaw := sub.RAM
	if len(ramRaw) == 0 {
		ramRaw = sub.Memory
	}

	ram := decodeValue(ramRaw)
	metric.RAMPercent = n.normalizeRAM(ram)
	applyMemoryBreakdown(metric, ram)

	n.extractExtended(metric, sub)

	return metric
}

// decodeSubmission rebuilds the structured submission field by field so one
// ill-typed field degrades only itself, never the rest of the sample.
func decodeSubmission(bag map[string]interface{}) *models.MetricsSubmission {
	sub := &models.MetricsSubmission{}

	if v, ok := bag["timestamp"].(string); ok {
		sub.Timestamp = v
	}

	if v, ok := bag["agent_version"].(string); ok {
		sub.AgentVersion = v
	}

	sub.CPU = rawField(bag, "cpu")
	sub.RAM = rawField(bag, "ram")
	sub.Memory = rawField(bag, "memory")
	sub.Load = rawField(bag, "load")
	sub.Uptime = rawField(bag, "uptime")
	sub.Alerts = rawField(bag, "alerts")
	sub.Processes = rawField(bag, "processes")
	sub.Disks = rawField(bag, "disks")
	sub.Network = rawField(bag, "network")
	sub.SystemInfo = rawField(bag, "system_info")

	return sub
}

// rawField re-encodes one bag entry as raw JSON for the decode cascade.
func rawField(bag map[string]interface{}, key string) json.RawMessage {
	v, ok := bag[key]
	if !ok || v == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return raw
}

// normalizeCPU resolves a CPU value through the four known encodings, in
// priority order: pre-computed usage_percent, bare scalar, legacy
// time-series, summarized statistics.
func (n *Normalizer) normalizeCPU(v interface{}) *float64 {
	if v == nil {
		return nil
	}

	if usage, ok := usagePercentField(v); ok {
		return clampPercent(usage)
	}

	if scalar, ok := asFloat(v); ok {
		return clampPercent(scalar)
	}

	if series, ok := asTimeSeries(v); ok {
		return cpuFromSeries(series)
	}

	if dims, ok := asSummaryDimensions(v); ok {
		return cpuFromSummary(dims)
	}

	return nil
}

// normalizeRAM mirrors normalizeCPU with the memory column arithmetic.
func (n *Normalizer) normalizeRAM(v interface{}) *float64 {
	if v == nil {
		return nil
	}

	if usage, ok := usagePercentField(v); ok {
		return clampPercent(usage)
	}

	if scalar, ok := asFloat(v); ok {
		return clampPercent(scalar)
	}

	if series, ok := asTimeSeries(v); ok {
		return ramFromColumns(series.lastRowColumns())
	}

	if dims, ok := asSummaryDimensions(v); ok {
		return ramFromColumns(dims)
	}

	return nil
}

func cpuFromSeries(series *timeSeries) *float64 {
	cols := series.lastRowColumns()
	if cols == nil {
		return nil
	}

	if idle, ok := cols["idle"]; ok {
		return clampPercent(100 - idle)
	}

	if usage, ok := cols["usage"]; ok {
		return clampPercent(usage)
	}

	if busy, ok := cols["busy"]; ok {
		return clampPercent(busy)
	}

	user, hasUser := cols["user"]
	system, hasSystem := cols["system"]

	if hasUser || hasSystem {
		return clampPercent(user + system)
	}

	return nil
}

// cpuFromSummary sums every dimension's average except idle. The dpc
// dimension (Windows deferred procedure calls) counts toward the total here
// and is merged into system by cpuStates for the detailed breakdown.
func cpuFromSummary(dims map[string]float64) *float64 {
	if len(dims) == 0 {
		return nil
	}

	var total float64

	found := false

	for id, avg := range dims {
		if id == "idle" {
			continue
		}

		total += avg
		found = true
	}

	if !found {
		return nil
	}

	return clampPercent(total)
}

// memoryColumns are the columns that participate in RAM usage arithmetic.
var memoryColumns = []string{"used", "free", "cached", "buffers", "available"}

// ramFromColumns computes used / sum(non-negative memory columns) * 100.
// Negative values clamp to zero before summing. A zero used value or a zero
// sum yields nil, never zero and never a division error.
func ramFromColumns(cols map[string]float64) *float64 {
	if cols == nil {
		return nil
	}

	used, hasUsed := cols["used"]
	if !hasUsed {
		// Some agent builds report a single pre-divided usage column.
		if usage, ok := cols["usage"]; ok {
			return clampPercent(usage)
		}

		return nil
	}

	if used <= 0 {
		return nil
	}

	var total float64

	for _, name := range memoryColumns {
		v, ok := cols[name]
		if !ok {
			continue
		}

		if v < 0 {
			v = 0
		}

		total += v
	}

	if total <= 0 {
		return nil
	}

	return clampPercent(used / total * 100)
}

// cpuStates builds the detailed per-state breakdown from whichever encoding
// carries one. dpc merges into system and disappears as its own key.
func cpuStates(v interface{}) map[string]float64 {
	var states map[string]float64

	if dims, ok := asSummaryDimensions(v); ok {
		states = dims
	} else if series, ok := asTimeSeries(v); ok {
		states = series.lastRowColumns()
	} else if m, ok := v.(map[string]interface{}); ok {
		states = make(map[string]float64)

		for key, raw := range m {
			if key == "usage_percent" {
				continue
			}

			if f, ok := asFloat(raw); ok {
				states[key] = f
			}
		}
	}

	if len(states) == 0 {
		return nil
	}

	if dpc, ok := states["dpc"]; ok {
		states["system"] += dpc
		delete(states, "dpc")
	}

	for key, val := range states {
		states[key] = round2(val)
	}

	return states
}

// usagePercentField reports a pre-computed usage_percent on a structured
// object.
func usagePercentField(v interface{}) (float64, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return 0, false
	}

	return asFloat(m["usage_percent"])
}

// decodeValue unmarshals a raw JSON fragment into a generic value. Legacy
// agents double-encode: a string is first tried as a number, then as nested
// JSON. Anything unparsable decodes to nil.
func decodeValue(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	s, ok := v.(string)
	if !ok {
		return v
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	var nested interface{}
	if err := json.Unmarshal([]byte(s), &nested); err != nil {
		return nil
	}

	return nested
}

func asFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampPercent(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	if v < 0 {
		v = 0
	}

	if v > 100 {
		v = 100
	}

	v = round2(v)

	return &v
}
