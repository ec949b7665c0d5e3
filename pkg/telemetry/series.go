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

import "math"

// timeSeries is the legacy chart export shape: a labels header row and data
// rows where the first column is a timestamp. Cells that were not numeric in
// the source payload hold NaN so column lookup skips them.
type timeSeries struct {
	labels []string
	data   [][]float64
}

// lastRowColumns maps the freshest data row onto its labels, skipping the
// leading time column. Rows shorter than the header contribute only the
// columns they carry, and non-numeric cells contribute nothing.
func (s *timeSeries) lastRowColumns() map[string]float64 {
	if len(s.labels) < 2 || len(s.data) == 0 {
		return nil
	}

	row := s.data[len(s.data)-1]
	cols := make(map[string]float64, len(s.labels)-1)

	for i := 1; i < len(s.labels) && i < len(row); i++ {
		if math.IsNaN(row[i]) {
			continue
		}

		cols[s.labels[i]] = row[i]
	}

	if len(cols) == 0 {
		return nil
	}

	return cols
}

// asTimeSeries recognizes the legacy {labels, data} export, including the
// variant nested under a "result" wrapper.
func asTimeSeries(v interface{}) (*timeSeries, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}

	if inner, ok := m["result"].(map[string]interface{}); ok {
		if _, hasLabels := inner["labels"]; hasLabels {
			m = inner
		}
	}

	rawLabels, ok := m["labels"].([]interface{})
	if !ok {
		return nil, false
	}

	rawData, ok := m["data"].([]interface{})
	if !ok {
		return nil, false
	}

	series := &timeSeries{labels: make([]string, 0, len(rawLabels))}

	for _, l := range rawLabels {
		s, ok := l.(string)
		if !ok {
			return nil, false
		}

		series.labels = append(series.labels, s)
	}

	for _, r := range rawData {
		rawRow, ok := r.([]interface{})
		if !ok {
			continue
		}

		row := make([]float64, 0, len(rawRow))

		for _, cell := range rawRow {
			f, ok := asFloat(cell)
			if !ok {
				f = math.NaN()
			}

			row = append(row, f)
		}

		series.data = append(series.data, row)
	}

	return series, true
}

// asSummaryDimensions recognizes the summarized statistics shape: dimension
// ids under view.dimensions.ids aligned with averages under
// view.dimensions.sts.avg.
func asSummaryDimensions(v interface{}) (map[string]float64, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}

	view, ok := m["view"].(map[string]interface{})
	if !ok {
		return nil, false
	}

	dimensions, ok := view["dimensions"].(map[string]interface{})
	if !ok {
		return nil, false
	}

	rawIDs, ok := dimensions["ids"].([]interface{})
	if !ok {
		return nil, false
	}

	sts, ok := dimensions["sts"].(map[string]interface{})
	if !ok {
		return nil, false
	}

	rawAvgs, ok := sts["avg"].([]interface{})
	if !ok {
		return nil, false
	}

	dims := make(map[string]float64)

	for i, rawID := range rawIDs {
		if i >= len(rawAvgs) {
			break
		}

		id, ok := rawID.(string)
		if !ok {
			continue
		}

		avg, ok := asFloat(rawAvgs[i])
		if !ok {
			continue
		}

		dims[id] = avg
	}

	if len(dims) == 0 {
		return nil, false
	}

	return dims, true
}
