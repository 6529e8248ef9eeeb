package models

import (
	"fmt"
	"time"
)

// ScalingMetric is a single weighted reading used by the decision engine.
// ThresholdUp and ThresholdDown bound the "normal" band: values above
// ThresholdUp indicate over-load, values below ThresholdDown under-load.
type ScalingMetric struct {
	Name          string    `json:"name"`
	Value         float64   `json:"value"`
	ThresholdUp   float64   `json:"threshold_up"`
	ThresholdDown float64   `json:"threshold_down"`
	Weight        float64   `json:"weight"`
	Timestamp     time.Time `json:"timestamp"`
}

// Validate reports why a metric must not enter the weighted sums.
func (m ScalingMetric) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("metric has no name")
	}
	if m.Weight < 0 {
		return fmt.Errorf("metric %s: negative weight %.3f", m.Name, m.Weight)
	}
	if m.ThresholdUp > 0 && m.ThresholdDown > m.ThresholdUp {
		return fmt.Errorf("metric %s: threshold_down %.3f exceeds threshold_up %.3f",
			m.Name, m.ThresholdDown, m.ThresholdUp)
	}
	return nil
}

// OverThresholdUp reports whether the value breaches the upper threshold.
func (m ScalingMetric) OverThresholdUp() bool {
	return m.ThresholdUp > 0 && m.Value > m.ThresholdUp
}

// UnderThresholdDown reports whether the value breaches the lower threshold.
func (m ScalingMetric) UnderThresholdDown() bool {
	return m.ThresholdDown > 0 && m.Value < m.ThresholdDown
}
