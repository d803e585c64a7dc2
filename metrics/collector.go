// Package metrics exports tilerender statistics to Prometheus.
//
// A Collector reads its sources on every scrape. Surface contexts and tile
// caches are not safe for concurrent use, so gather from the goroutine that
// renders, or serialize scrapes with rendering.
package metrics

import (
	"strconv"

	"github.com/gogpu/tilerender/surface"
	"github.com/gogpu/tilerender/tiles"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace  = "tilerender"
	layerLabel = "layer"
)

var (
	atlasPages = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "atlas", "pages"),
		"The number of atlas pages.",
		nil, nil,
	)
	atlasLiveBins = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "atlas", "live_bins"),
		"The number of atlas regions held by surfaces.",
		nil, nil,
	)
	atlasUsedRatio = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "atlas", "used_area_ratio"),
		"The fraction of atlas page area covered by live regions.",
		nil, nil,
	)
	atlasFlushes = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "atlas", "flushes_total"),
		"The number of back to front page copies.",
		nil, nil,
	)
	liveSurfaces = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "surfaces", "live"),
		"The number of live surfaces.",
		nil, nil,
	)
	imageCacheHits = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "image_cache", "hits_total"),
		"The number of decoded image cache hits.",
		nil, nil,
	)
	imageCacheMisses = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "image_cache", "misses_total"),
		"The number of decoded image cache misses.",
		nil, nil,
	)
	cellBuilds = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "tiles", "cell_builds_total"),
		"The number of tile cell batches compiled.",
		[]string{layerLabel}, nil,
	)
	cellDraws = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "tiles", "cell_draws_total"),
		"The number of tile cell batches drawn.",
		[]string{layerLabel}, nil,
	)
	movingDraws = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "tiles", "moving_draws_total"),
		"The number of moving cell batches drawn.",
		[]string{layerLabel}, nil,
	)
	rejectedTiles = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "tiles", "rejected_total"),
		"The number of tiles dropped at build time.",
		[]string{layerLabel}, nil,
	)
)

// Collector is a prometheus.Collector over a surface context and the tile
// caches drawing into it.
type Collector struct {
	ctx    *surface.Context
	caches []*tiles.Cache
}

// NewCollector returns a collector for ctx and caches. ctx may be nil when
// only tile statistics are wanted.
func NewCollector(ctx *surface.Context, caches ...*tiles.Cache) *Collector {
	return &Collector{ctx: ctx, caches: caches}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		atlasPages, atlasLiveBins, atlasUsedRatio, atlasFlushes,
		liveSurfaces, imageCacheHits, imageCacheMisses,
		cellBuilds, cellDraws, movingDraws, rejectedTiles,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.ctx != nil {
		s := c.ctx.AtlasStats()
		ch <- prometheus.MustNewConstMetric(atlasPages, prometheus.GaugeValue, float64(s.Pages))
		ch <- prometheus.MustNewConstMetric(atlasLiveBins, prometheus.GaugeValue, float64(s.LiveBins))
		ch <- prometheus.MustNewConstMetric(atlasUsedRatio, prometheus.GaugeValue, s.Utilization())
		ch <- prometheus.MustNewConstMetric(atlasFlushes, prometheus.CounterValue, float64(s.Flushes))
		ch <- prometheus.MustNewConstMetric(liveSurfaces, prometheus.GaugeValue, float64(len(c.ctx.Surfaces())))

		ic := c.ctx.ImageCacheStats()
		ch <- prometheus.MustNewConstMetric(imageCacheHits, prometheus.CounterValue, float64(ic.Hits))
		ch <- prometheus.MustNewConstMetric(imageCacheMisses, prometheus.CounterValue, float64(ic.Misses))
	}

	for _, tc := range c.caches {
		layer := strconv.Itoa(tc.Layer())
		s := tc.Stats()
		ch <- prometheus.MustNewConstMetric(cellBuilds, prometheus.CounterValue, float64(s.CellBuilds), layer)
		ch <- prometheus.MustNewConstMetric(cellDraws, prometheus.CounterValue, float64(s.CellDraws), layer)
		ch <- prometheus.MustNewConstMetric(movingDraws, prometheus.CounterValue, float64(s.MovingDraws), layer)
		ch <- prometheus.MustNewConstMetric(rejectedTiles, prometheus.CounterValue, float64(s.Rejected), layer)
	}
}
