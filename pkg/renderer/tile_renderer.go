package renderer

import (
	"image"
	"math"
	"math/rand"
)

// TileRenderer renders rectangular regions of the image into shared pixel statistics
type TileRenderer struct {
	raytracer *Raytracer
	config    ProgressiveConfig
}

// NewTileRenderer creates a tile renderer for the given scene and image size
func NewTileRenderer(s Scene, width, height int, config ProgressiveConfig) *TileRenderer {
	return &TileRenderer{
		raytracer: NewRaytracer(s, width, height),
		config:    config,
	}
}

// RenderTileBounds brings every pixel within bounds up to targetSamples,
// stopping early for pixels that have already converged
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, random *rand.Rand, targetSamples int) RenderStats {
	stats := tr.initRenderStatsForBounds(bounds, targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			samplesUsed := tr.adaptiveSamplePixel(i, j, &pixelStats[j][i], random, targetSamples)
			tr.updateStats(&stats, samplesUsed)
		}
	}

	tr.finalizeStats(&stats)
	return stats
}

// adaptiveSamplePixel takes samples until convergence or maxSamples
func (tr *TileRenderer) adaptiveSamplePixel(i, j int, ps *PixelStats, random *rand.Rand, maxSamples int) int {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < maxSamples && !tr.shouldStopSampling(ps, maxSamples) {
		ps.AddSample(tr.raytracer.SamplePixel(i, j, random))
	}

	return ps.SampleCount - initialSampleCount
}

// shouldStopSampling determines if adaptive sampling should stop based on perceptual relative error
func (tr *TileRenderer) shouldStopSampling(ps *PixelStats, maxSamples int) bool {
	if tr.config.AdaptiveThreshold <= 0 {
		return false
	}

	// Minimum samples as a fraction of max samples, at least 1
	minSamples := max(1, int(float64(maxSamples)*tr.config.AdaptiveMinSamples))
	if ps.SampleCount < minSamples {
		return false
	}

	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	meanSq := ps.LuminanceSqAccum / float64(ps.SampleCount)
	variance := math.Max(0, meanSq-mean*mean)

	// Avoid division by zero for black pixels
	if mean <= 1e-8 {
		return variance < 1e-6
	}

	// Coefficient of variation
	relativeError := math.Sqrt(variance) / mean

	return relativeError < tr.config.AdaptiveThreshold
}

// initRenderStatsForBounds initializes the render statistics tracking for specific bounds
func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle, maxSamples int) RenderStats {
	return RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  maxSamples,
		MinSamples:  maxSamples, // Reduced as pixels report in
	}
}

// updateStats updates the render statistics with data from a single pixel
func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

// finalizeStats calculates final statistics after all pixels are rendered
func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}
