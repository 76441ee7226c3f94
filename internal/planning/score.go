package planning

import "github.com/patrickwarner/openmediaplan/internal/models"

// Score rates a plan out of 100: frequency counts for 30 points, coverage
// for 40 and CPM efficiency for 30. Every plan scores between 25 and 100.
func Score(m models.PlanMetrics) models.PerformanceScore {
	s := models.PerformanceScore{
		Frequency: frequencyScore(m.Frequency),
		Coverage:  coverageScore(m.Coverage),
		CPM:       cpmScore(m.BlendedCPM),
	}
	s.Score = s.Frequency + s.Coverage + s.CPM
	s.Level = Level(s.Score)
	return s
}

// Level maps a score to its qualitative band.
func Level(score int) models.PerformanceLevel {
	switch {
	case score >= 85:
		return models.LevelExcellent
	case score >= 70:
		return models.LevelGood
	case score >= 50:
		return models.LevelAverage
	default:
		return models.LevelPoor
	}
}

func frequencyScore(f float64) int {
	switch {
	case f >= 2 && f <= 4:
		return 30
	case f >= 1.5 && f < 5:
		return 20
	default:
		return 10
	}
}

func coverageScore(c float64) int {
	switch {
	case c >= 60:
		return 40
	case c >= 40:
		return 30
	case c >= 20:
		return 20
	default:
		return 10
	}
}

func cpmScore(cpm float64) int {
	switch {
	case cpm <= 6:
		return 30
	case cpm <= 8:
		return 25
	case cpm <= 10:
		return 15
	default:
		return 5
	}
}
