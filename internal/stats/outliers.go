package stats

import "sort"

// OutlierReport describes the samples flagged by the IQR fence method.
type OutlierReport struct {
	Q1         uint64
	Q3         uint64
	IQR        float64
	LowerFence uint64
	UpperFence uint64
	// Indices into the original sample slice, in sample order.
	Indices []int
}

// IQROutliers flags samples outside [Q1 - 1.5·IQR, Q3 + 1.5·IQR]. The lower
// fence saturates at zero since durations cannot be negative.
func IQROutliers(samples []uint64) OutlierReport {
	n := len(samples)
	if n == 0 {
		return OutlierReport{}
	}

	sorted := make([]uint64, n)
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	clamp := func(i int) int {
		if i > n-1 {
			return n - 1
		}
		return i
	}
	q1 := sorted[clamp(n*25/100)]
	q3 := sorted[clamp(n*75/100)]
	iqr := float64(q3 - q1)

	lower := float64(q1) - 1.5*iqr
	if lower < 0 {
		lower = 0
	}
	upper := float64(q3) + 1.5*iqr

	rep := OutlierReport{
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		LowerFence: uint64(lower),
		UpperFence: uint64(upper),
	}
	for i, s := range samples {
		if float64(s) < lower || float64(s) > upper {
			rep.Indices = append(rep.Indices, i)
		}
	}
	return rep
}

// ZScoreOutliers flags samples more than 3 standard deviations from the mean.
// With zero stddev nothing is flagged.
func ZScoreOutliers(samples []uint64, mean, stddev float64) []int {
	if stddev <= 0 {
		return nil
	}
	var out []int
	for i, s := range samples {
		z := (float64(s) - mean) / stddev
		if z > 3 || z < -3 {
			out = append(out, i)
		}
	}
	return out
}
