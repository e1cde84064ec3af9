package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/rosso/internal/storage/memory"
)

// StatsSource supplies keyspace counters.
type StatsSource interface {
	Stats() memory.Stats
}

// KeyspaceCollector exports keyspace counters at scrape time.
type KeyspaceCollector struct {
	src StatsSource

	keys      *prometheus.Desc
	shardKeys *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	expired   *prometheus.Desc
}

// NewKeyspaceCollector creates a collector reading from src.
func NewKeyspaceCollector(src StatsSource) *KeyspaceCollector {
	return &KeyspaceCollector{
		src: src,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "keys"),
			"Stored keys, including expired keys not yet reclaimed", nil, nil),
		shardKeys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "shard_keys"),
			"Stored keys per keyspace shard", []string{"shard"}, nil),
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "hits_total"),
			"Successful key lookups", nil, nil),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "misses_total"),
			"Lookups of missing keys", nil, nil),
		expired: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "expired_keys_total"),
			"Expired keys removed, by path", []string{"path"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *KeyspaceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.shardKeys
	ch <- c.hits
	ch <- c.misses
	ch <- c.expired
}

// Collect implements prometheus.Collector.
func (c *KeyspaceCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(s.Keys))
	for i, n := range s.ShardKeys {
		ch <- prometheus.MustNewConstMetric(c.shardKeys, prometheus.GaugeValue, float64(n), strconv.Itoa(i))
	}
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.CounterValue, float64(s.ExpiredLazy), "lazy")
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.CounterValue, float64(s.ExpiredSwept), "sweep")
}
