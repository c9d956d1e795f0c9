// Package metrics exposes heap statistics as Prometheus metrics.
//
// The Collector reads a fresh snapshot on every scrape, so it carries no
// state of its own and needs no background goroutine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/symdb/db/alloc"
)

// StatsSource supplies a heap snapshot. The facade's Index and a bare
// alloc.BlockAllocator both qualify.
type StatsSource interface {
	Stats() (alloc.Stats, error)
}

// Collector is a prometheus.Collector over a StatsSource.
type Collector struct {
	src StatsSource

	chunks         *prometheus.Desc
	fileBytes      *prometheus.Desc
	freeBytes      *prometheus.Desc
	allocatedBytes *prometheus.Desc
	freeBlocks     *prometheus.Desc
	mallocs        *prometheus.Desc
	frees          *prometheus.Desc
	grows          *prometheus.Desc
	splits         *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector whose metric names start with namespace.
func NewCollector(src StatsSource, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &Collector{
		src:            src,
		chunks:         desc("chunks", "Chunks in the database file, header included."),
		fileBytes:      desc("file_bytes", "Size of the database file in bytes."),
		freeBytes:      desc("free_bytes", "Bytes held by free blocks."),
		allocatedBytes: desc("allocated_bytes", "Bytes held by allocated blocks, headers included."),
		freeBlocks:     desc("free_blocks", "Number of free blocks."),
		mallocs:        desc("malloc_total", "Successful allocations."),
		frees:          desc("free_total", "Successful frees."),
		grows:          desc("chunk_grow_total", "Chunks appended to satisfy an allocation."),
		splits:         desc("split_total", "Allocations that split a larger free block."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs() {
		ch <- d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s, err := c.src.Stats()
	if err != nil {
		for _, d := range c.descs() {
			ch <- prometheus.NewInvalidMetric(d, err)
		}
		return
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge(c.chunks, float64(s.Chunks))
	gauge(c.fileBytes, float64(s.FileBytes))
	gauge(c.freeBytes, float64(s.FreeBytes))
	gauge(c.allocatedBytes, float64(s.AllocatedBytes))
	gauge(c.freeBlocks, float64(s.FreeBlocks))
	counter(c.mallocs, s.Mallocs)
	counter(c.frees, s.Frees)
	counter(c.grows, s.Grows)
	counter(c.splits, s.Splits)
}

func (c *Collector) descs() []*prometheus.Desc {
	return []*prometheus.Desc{
		c.chunks, c.fileBytes, c.freeBytes, c.allocatedBytes, c.freeBlocks,
		c.mallocs, c.frees, c.grows, c.splits,
	}
}
