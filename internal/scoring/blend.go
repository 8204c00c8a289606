package scoring

// Blend combines resume quality and match quality into the single score that
// drives iteration. Without a match report the resume total is used as is.
// When both blend weights are zero the midpoint is taken.
func Blend(resume, match *Report, overall Weights) float64 {
	resumeTotal := 0.0
	if resume != nil {
		resumeTotal = resume.Total
	}
	if match == nil {
		return clamp(resumeTotal, 0, 100)
	}

	if overall == nil {
		overall = DefaultOverallWeights()
	}
	normalized := NormalizeWeights(overall)
	resumeWeight := normalized[BlendResume]
	matchWeight := normalized[BlendMatch]

	if resumeWeight+matchWeight <= 0 {
		return clamp((resumeTotal+match.Total)/2, 0, 100)
	}

	return clamp(resumeTotal*resumeWeight+match.Total*matchWeight, 0, 100)
}
