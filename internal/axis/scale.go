package axis

import (
	"math"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
)

// minLogTicks is the number of positive ticks needed before a log scale is
// considered at all.
const minLogTicks = 3

// DetectScale infers the scale type from pixel-ordered ticks. Successive
// log10 steps that are nearly constant (stddev/|mean| below tolerance) mean
// the values grow geometrically along the axis, i.e. a log scale.
func DetectScale(ticks []diagram.AxisTick, tolerance float64) diagram.ScaleType {
	logs := make([]float64, 0, len(ticks))
	for _, t := range ticks {
		if t.ParsedValue > 0 {
			logs = append(logs, math.Log10(t.ParsedValue))
		}
	}
	if len(logs) < minLogTicks {
		return diagram.ScaleLinear
	}

	diffs := make([]float64, len(logs)-1)
	var mean float64
	for i := range diffs {
		diffs[i] = logs[i+1] - logs[i]
		mean += diffs[i]
	}
	mean /= float64(len(diffs))
	if math.Abs(mean) < 1e-6 {
		return diagram.ScaleLinear
	}

	var variance float64
	for _, d := range diffs {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(diffs))

	if math.Sqrt(variance)/math.Abs(mean) < tolerance {
		return diagram.ScaleLog
	}
	return diagram.ScaleLinear
}
