// Package forecast produces simple monthly net-cashflow forecasts from
// historical series. The affordability projector consumes its output.
package forecast

// LinearTrend fits an ordinary least-squares line through the history and
// extrapolates it months steps forward. A history shorter than two points
// flat-lines on its last value; an empty history forecasts zero.
func LinearTrend(history []float64, months int) []float64 {
	if months <= 0 {
		return nil
	}
	out := make([]float64, months)
	switch len(history) {
	case 0:
		return out
	case 1:
		for i := range out {
			out[i] = history[0]
		}
		return out
	}

	n := float64(len(history))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range history {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		for i := range out {
			out[i] = history[len(history)-1]
		}
		return out
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	for i := range out {
		x := n + float64(i)
		out[i] = intercept + slope*x
	}
	return out
}

// MovingAverage forecasts every future month at the mean of the last window
// points. window values larger than the history shrink to fit.
func MovingAverage(history []float64, window, months int) []float64 {
	if months <= 0 {
		return nil
	}
	out := make([]float64, months)
	if len(history) == 0 {
		return out
	}
	if window <= 0 || window > len(history) {
		window = len(history)
	}
	var sum float64
	for _, v := range history[len(history)-window:] {
		sum += v
	}
	mean := sum / float64(window)
	for i := range out {
		out[i] = mean
	}
	return out
}
