package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// VaultMetrics aggregates the engine-level prometheus series.
type VaultMetrics struct {
	currentEpoch   prometheus.Gauge
	depositsTotal  *prometheus.CounterVec
	harvestsTotal  prometheus.Counter
	stakesTotal    *prometheus.CounterVec
	withdrawals    *prometheus.CounterVec
	lockedTotal    *prometheus.GaugeVec
	operationAbort *prometheus.CounterVec
}

var (
	vaultOnce     sync.Once
	vaultRegistry *VaultMetrics
)

// Vault returns the process-wide metrics registry, registering the series on
// first use.
func Vault() *VaultMetrics {
	vaultOnce.Do(func() {
		vaultRegistry = &VaultMetrics{
			currentEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "vault_current_epoch",
				Help: "Current accounting epoch shared by all ledgers.",
			}),
			depositsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_deposits_total",
				Help: "Cumulative deposited earnings by asset.",
			}, []string{"asset"}),
			harvestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "vault_harvests_total",
				Help: "Count of successful harvest claims.",
			}),
			stakesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_positions_created_total",
				Help: "Count of created positions by ledger.",
			}, []string{"ledger"}),
			withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_withdrawals_total",
				Help: "Count of successful withdrawals by ledger.",
			}, []string{"ledger"}),
			lockedTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "vault_locked_total",
				Help: "Aggregate locked total for the current epoch by ledger.",
			}, []string{"ledger"}),
			operationAbort: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_operation_aborts_total",
				Help: "Count of aborted operations by name.",
			}, []string{"op"}),
		}
		prometheus.MustRegister(
			vaultRegistry.currentEpoch,
			vaultRegistry.depositsTotal,
			vaultRegistry.harvestsTotal,
			vaultRegistry.stakesTotal,
			vaultRegistry.withdrawals,
			vaultRegistry.lockedTotal,
			vaultRegistry.operationAbort,
		)
	})
	return vaultRegistry
}

// SetCurrentEpoch records the shared epoch counter.
func (m *VaultMetrics) SetCurrentEpoch(epoch uint64) {
	if m == nil {
		return
	}
	m.currentEpoch.Set(float64(epoch))
}

// ObserveDeposit accumulates deposited amounts per asset. Amounts outside
// float precision still register the order of magnitude, which is all the
// dashboards need.
func (m *VaultMetrics) ObserveDeposit(asset string, amount float64) {
	if m == nil {
		return
	}
	m.depositsTotal.WithLabelValues(asset).Add(amount)
}

// ObserveHarvest counts a successful harvest.
func (m *VaultMetrics) ObserveHarvest() {
	if m == nil {
		return
	}
	m.harvestsTotal.Inc()
}

// ObservePositionCreated counts a created position for a ledger.
func (m *VaultMetrics) ObservePositionCreated(ledger string) {
	if m == nil {
		return
	}
	m.stakesTotal.WithLabelValues(ledger).Inc()
}

// ObserveWithdrawal counts a successful withdrawal for a ledger.
func (m *VaultMetrics) ObserveWithdrawal(ledger string) {
	if m == nil {
		return
	}
	m.withdrawals.WithLabelValues(ledger).Inc()
}

// SetLockedTotal records the current epoch's aggregate for a ledger.
func (m *VaultMetrics) SetLockedTotal(ledger string, total float64) {
	if m == nil {
		return
	}
	m.lockedTotal.WithLabelValues(ledger).Set(total)
}

// ObserveAbort counts an aborted operation.
func (m *VaultMetrics) ObserveAbort(op string) {
	if m == nil {
		return
	}
	m.operationAbort.WithLabelValues(op).Inc()
}
