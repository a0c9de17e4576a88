package metrics

import (
	"context"
	"strconv"
	"time"

	"smartcare/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const namespace = "smartcare"

// Metrics holds the counters updated by the patient and bed operations
type Metrics struct {
	admissions         *prometheus.CounterVec
	discharges         *prometheus.CounterVec
	allocationFailures *prometheus.CounterVec
	importRows         *prometheus.CounterVec
}

// Import row results
const (
	ImportImported = "imported"
	ImportSkipped  = "skipped"
	ImportFailed   = "failed"
)

// New creates the counters and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Patients admitted, by department.",
		}, []string{"department"}),
		discharges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discharges_total",
			Help:      "Patients discharged, by whether a bed was released.",
		}, []string{"bed_released"}),
		allocationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bed_allocation_failures_total",
			Help:      "Bed allocations that found no free bed, by department.",
		}, []string{"department"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Bulk import rows, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.admissions, m.discharges, m.allocationFailures, m.importRows)
	return m
}

// NewNop returns metrics registered on a private registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Admitted(department string) {
	m.admissions.WithLabelValues(department).Inc()
}

func (m *Metrics) Discharged(bedReleased bool) {
	m.discharges.WithLabelValues(strconv.FormatBool(bedReleased)).Inc()
}

func (m *Metrics) AllocationFailed(department string) {
	m.allocationFailures.WithLabelValues(department).Inc()
}

func (m *Metrics) ImportRow(result string) {
	m.importRows.WithLabelValues(result).Inc()
}

// OccupancySource computes the current department summaries
type OccupancySource interface {
	Summarize(ctx context.Context) ([]entity.DepartmentSummary, error)
}

// OccupancyCollector exports bed occupancy, recomputed on every scrape
type OccupancyCollector struct {
	source  OccupancySource
	log     *logrus.Logger
	timeout time.Duration

	beds *prometheus.Desc
	rate *prometheus.Desc
}

func NewOccupancyCollector(source OccupancySource, log *logrus.Logger) *OccupancyCollector {
	return &OccupancyCollector{
		source:  source,
		log:     log,
		timeout: 5 * time.Second,
		beds: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "department", "beds"),
			"Beds per department, by state.",
			[]string{"department", "state"}, nil,
		),
		rate: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "department", "occupancy_rate"),
			"Occupied beds as a percentage of all beds in the department.",
			[]string{"department"}, nil,
		),
	}
}

func (c *OccupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.beds
	ch <- c.rate
}

func (c *OccupancyCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	summaries, err := c.source.Summarize(ctx)
	if err != nil {
		c.log.Warnf("Failed to collect occupancy metrics: %+v", err)
		return
	}

	for _, s := range summaries {
		ch <- prometheus.MustNewConstMetric(c.beds, prometheus.GaugeValue, float64(s.Occupied), s.Department, "occupied")
		ch <- prometheus.MustNewConstMetric(c.beds, prometheus.GaugeValue, float64(s.Vacant), s.Department, "vacant")
		ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, s.OccupancyRate, s.Department)
	}
}
