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

package telemetry

import (
	"math"

	"github.com/benjameshughes/rmm/pkg/models"
)

// applyMemoryBreakdown copies the per-column memory values (MiB) onto the
// metric when the RAM value carried them.
func applyMemoryBreakdown(metric *models.DeviceMetric, v interface{}) {
	var cols map[string]float64

	if series, ok := asTimeSeries(v); ok {
		cols = series.lastRowColumns()
	} else if dims, ok := asSummaryDimensions(v); ok {
		cols = dims
	} else if m, ok := v.(map[string]interface{}); ok {
		cols = make(map[string]float64)

		for key, raw := range m {
			if f, ok := asFloat(raw); ok {
				cols[key] = f
			}
		}
	}

	if cols == nil {
		return
	}

	metric.MemoryUsedMiB = positiveField(cols, "used")
	metric.MemoryFreeMiB = positiveField(cols, "free")
	metric.MemoryCachedMiB = positiveField(cols, "cached")
	metric.MemoryBuffersMiB = positiveField(cols, "buffers")
	metric.MemoryAvailableMiB = positiveField(cols, "available")

	if total := positiveField(cols, "total"); total != nil {
		metric.MemoryTotalMiB = total
		return
	}

	var sum float64

	for _, p := range []*float64{
		metric.MemoryUsedMiB, metric.MemoryFreeMiB,
		metric.MemoryCachedMiB, metric.MemoryBuffersMiB,
	} {
		if p != nil {
			sum += *p
		}
	}

	if sum > 0 {
		sum = round2(sum)
		metric.MemoryTotalMiB = &sum
	}
}

func positiveField(cols map[string]float64, name string) *float64 {
	v, ok := cols[name]
	if !ok || v < 0 {
		return nil
	}

	v = round2(v)

	return &v
}

// extractExtended pulls the optional structured sections out of a submission.
// Each section parses independently; a malformed one just stays nil.
func (n *Normalizer) extractExtended(metric *models.DeviceMetric, sub *models.MetricsSubmission) {
	extractLoad(metric, decodeValue(sub.Load))
	extractUptime(metric, decodeValue(sub.Uptime))
	extractAlerts(metric, decodeValue(sub.Alerts))
	extractProcesses(metric, decodeValue(sub.Processes))
	metric.Disks = extractDisks(decodeValue(sub.Disks))
	metric.Network = extractNetwork(decodeValue(sub.Network))
}

func extractLoad(metric *models.DeviceMetric, v interface{}) {
	var cols map[string]float64

	switch t := v.(type) {
	case map[string]interface{}:
		if series, ok := asTimeSeries(t); ok {
			cols = series.lastRowColumns()
		} else {
			cols = floatFields(t)
		}
	case []interface{}:
		// Bare triple [load1, load5, load15].
		if len(t) >= 3 {
			cols = make(map[string]float64, 3)

			if f, ok := asFloat(t[0]); ok {
				cols["load1"] = f
			}

			if f, ok := asFloat(t[1]); ok {
				cols["load5"] = f
			}

			if f, ok := asFloat(t[2]); ok {
				cols["load15"] = f
			}
		}
	}

	if cols == nil {
		return
	}

	metric.Load1 = nonNegative(firstOf(cols, "load1", "1m", "one"))
	metric.Load5 = nonNegative(firstOf(cols, "load5", "5m", "five"))
	metric.Load15 = nonNegative(firstOf(cols, "load15", "15m", "fifteen"))
}

func extractUptime(metric *models.DeviceMetric, v interface{}) {
	if f, ok := asFloat(v); ok {
		metric.UptimeSeconds = nonNegative(&f)
		return
	}

	m, ok := v.(map[string]interface{})
	if !ok {
		return
	}

	if series, ok := asTimeSeries(m); ok {
		cols := series.lastRowColumns()
		metric.UptimeSeconds = nonNegative(firstOf(cols, "uptime"))

		return
	}

	cols := floatFields(m)
	metric.UptimeSeconds = nonNegative(firstOf(cols, "uptime", "uptime_seconds", "seconds"))
}

func extractAlerts(metric *models.DeviceMetric, v interface{}) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return
	}

	cols := floatFields(m)
	metric.AlertsNormal = intField(cols, "normal")
	metric.AlertsWarning = intField(cols, "warning")
	metric.AlertsCritical = intField(cols, "critical")
}

func extractProcesses(metric *models.DeviceMetric, v interface{}) {
	var cols map[string]float64

	if m, ok := v.(map[string]interface{}); ok {
		if series, ok := asTimeSeries(m); ok {
			cols = series.lastRowColumns()
		} else {
			cols = floatFields(m)
		}
	}

	if cols == nil {
		return
	}

	metric.ProcessesTotal = intField(cols, "total")
	metric.ProcessesRunning = intField(cols, "running")
	metric.ProcessesSleeping = intField(cols, "sleeping")
	metric.ProcessesZombie = intField(cols, "zombie")
}

func extractDisks(v interface{}) []models.DeviceDiskMetric {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	var disks []models.DeviceDiskMetric

	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		mount := stringField(m, "mount_point")
		if mount == "" {
			mount = stringField(m, "mount")
		}

		if mount == "" {
			continue
		}

		cols := floatFields(m)

		d := models.DeviceDiskMetric{
			MountPoint:  mount,
			Name:        stringField(m, "name"),
			TotalGB:     nonNegative(firstOf(cols, "total_gb", "total")),
			UsedGB:      nonNegative(firstOf(cols, "used_gb", "used")),
			AvailableGB: nonNegative(firstOf(cols, "available_gb", "available", "free")),
			UsedPercent: firstOf(cols, "used_percent", "usage_percent"),
		}

		if d.UsedPercent != nil {
			d.UsedPercent = clampPercent(*d.UsedPercent)
		} else if d.UsedGB != nil && d.TotalGB != nil && *d.TotalGB > 0 {
			d.UsedPercent = clampPercent(*d.UsedGB / *d.TotalGB * 100)
		}

		disks = append(disks, d)
	}

	return disks
}

func extractNetwork(v interface{}) []models.DeviceNetworkMetric {
	switch t := v.(type) {
	case []interface{}:
		var nets []models.DeviceNetworkMetric

		for _, item := range t {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}

			iface := stringField(m, "interface")
			if iface == "" {
				iface = stringField(m, "name")
			}

			if iface == "" {
				continue
			}

			nets = append(nets, networkEntry(iface, floatFields(m)))
		}

		return nets
	case map[string]interface{}:
		// Keyed by interface name.
		var nets []models.DeviceNetworkMetric

		for iface, raw := range t {
			m, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}

			nets = append(nets, networkEntry(iface, floatFields(m)))
		}

		return nets
	}

	return nil
}

func networkEntry(iface string, cols map[string]float64) models.DeviceNetworkMetric {
	return models.DeviceNetworkMetric{
		Interface: iface,
		RxKbps:    nonNegative(firstOf(cols, "rx_kbps", "received", "rx")),
		TxKbps:    nonNegative(firstOf(cols, "tx_kbps", "sent", "tx")),
	}
}

func floatFields(m map[string]interface{}) map[string]float64 {
	cols := make(map[string]float64, len(m))

	for key, raw := range m {
		if f, ok := asFloat(raw); ok {
			cols[key] = f
		}
	}

	return cols
}

func stringField(m map[string]interface{}, name string) string {
	s, _ := m[name].(string)
	return s
}

func firstOf(cols map[string]float64, names ...string) *float64 {
	for _, name := range names {
		if v, ok := cols[name]; ok {
			v := v
			return &v
		}
	}

	return nil
}

func nonNegative(p *float64) *float64 {
	if p == nil || *p < 0 {
		return nil
	}

	v := round2(*p)

	return &v
}

func intField(cols map[string]float64, name string) *int {
	v, ok := cols[name]
	if !ok || v < 0 {
		return nil
	}

	i := int(math.Round(v))

	return &i
}
