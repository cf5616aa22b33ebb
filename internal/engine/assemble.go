package engine

import (
	"movie-explorer/internal/models"
)

// Assemble reshapes a score view and an award histogram into the rendering
// contract. It does no filtering or counting of its own.
func Assemble(scoreView models.FilteredView, histogram models.AwardHistogram) models.Views {
	scoreSeries := make([]models.ScorePoint, 0, len(scoreView))
	for _, r := range scoreView {
		// unscored records cannot be plotted
		if r.MetacriticScore == nil {
			continue
		}
		scoreSeries = append(scoreSeries, models.ScorePoint{
			ReleaseDate:     r.ReleaseDate,
			MetacriticScore: *r.MetacriticScore,
			Title:           r.Title,
		})
	}

	oscarSeries := models.OscarSeries{
		OscarsWon: make([]int, 0, len(histogram)),
		Count:     make([]int, 0, len(histogram)),
	}
	for _, b := range histogram {
		oscarSeries.OscarsWon = append(oscarSeries.OscarsWon, b.OscarsWon)
		oscarSeries.Count = append(oscarSeries.Count, b.Count)
	}

	return models.Views{
		ScoreSeries: scoreSeries,
		OscarSeries: oscarSeries,
	}
}

// Compute runs one full recomputation cycle: both filters, the aggregation of
// the oscars view, and assembly.
func Compute(d *Dataset, c models.FilterCriteria) models.Views {
	scoreView := d.Filter(c, models.AxisScore)
	oscarView := d.Filter(c, models.AxisOscars)
	return Assemble(scoreView, Aggregate(oscarView))
}
