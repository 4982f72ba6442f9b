package metric

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersRegisteredDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "users_registered"),
		"Number of users in the credential store.",
		nil, nil,
	)
	sessionsActiveDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "sessions_active"),
		"Number of users holding a live session token.",
		nil, nil,
	)
	sessionShardDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "session", "shard_entries"),
		"Live session tokens held by each registry shard.",
		[]string{"shard"}, nil,
	)
)

// StateSource reports live counts at scrape time.
type StateSource interface {
	UserCount() (int, error)
	SessionCount() int
	// SessionShards returns the token count of each registry shard, indexed
	// by shard number.
	SessionShards() []int
}

// Collector publishes StateSource counts as gauges.
type Collector struct {
	source StateSource
}

// NewCollector creates a collector reading from source.
func NewCollector(source StateSource) *Collector {
	return &Collector{source: source}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- usersRegisteredDesc
	ch <- sessionsActiveDesc
	ch <- sessionShardDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if n, err := c.source.UserCount(); err != nil {
		ch <- prometheus.NewInvalidMetric(usersRegisteredDesc, fmt.Errorf("count users: %w", err))
	} else {
		ch <- prometheus.MustNewConstMetric(usersRegisteredDesc, prometheus.GaugeValue, float64(n))
	}

	ch <- prometheus.MustNewConstMetric(sessionsActiveDesc, prometheus.GaugeValue, float64(c.source.SessionCount()))

	for i, n := range c.source.SessionShards() {
		ch <- prometheus.MustNewConstMetric(sessionShardDesc, prometheus.GaugeValue, float64(n), strconv.Itoa(i))
	}
}
