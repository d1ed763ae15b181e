package stores

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented is what a store must expose to be scraped: both Mem and
// Pebble qualify.
type Instrumented interface {
	ID() string
	Updates() uint64
	Listeners() int
}

type StoreCollector struct {
	stores []Instrumented

	updates   *prometheus.Desc
	listeners *prometheus.Desc
}

func NewStoreCollector(stores ...Instrumented) *StoreCollector {
	return &StoreCollector{
		stores: stores,

		updates: prometheus.NewDesc(
			"nibble_store_updates_total",
			"Total number of updates applied to the store",
			[]string{"store"}, nil,
		),
		listeners: prometheus.NewDesc(
			"nibble_store_listeners",
			"Number of currently registered listeners",
			[]string{"store"}, nil,
		),
	}
}

func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.updates
	ch <- c.listeners
}

func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.stores {
		ch <- prometheus.MustNewConstMetric(
			c.updates, prometheus.CounterValue, float64(s.Updates()), s.ID(),
		)
		ch <- prometheus.MustNewConstMetric(
			c.listeners, prometheus.GaugeValue, float64(s.Listeners()), s.ID(),
		)
	}
}
