package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder exposes engine activity as Prometheus metrics. A nil Recorder is
// valid and records nothing, so callers never have to branch on telemetry
// being configured.
type Recorder struct {
	registry *prom.Registry

	updates       *prom.CounterVec
	ruleMatches   *prom.CounterVec
	statusChanges *prom.CounterVec
	refreshes     *prom.CounterVec
	nagging       prom.Gauge
	downtime      prom.Gauge
	secondsInStat prom.Gauge
}

// NewRecorder constructs and registers the metric set on the provided
// registry, creating a private one when reg is nil.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{registry: reg}
	r.updates = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "currenttask",
		Name:      "updates_total",
		Help:      "Engine update cycles by result",
	}, []string{"result"})
	r.ruleMatches = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "currenttask",
		Name:      "rule_matches_total",
		Help:      "Rule list matches by list",
	}, []string{"list"})
	r.statusChanges = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "currenttask",
		Name:      "status_changes_total",
		Help:      "Status transitions by resulting status",
	}, []string{"status"})
	r.refreshes = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "currenttask",
		Name:      "task_refreshes_total",
		Help:      "Task source refreshes by result",
	}, []string{"result"})
	r.nagging = prom.NewGauge(prom.GaugeOpts{
		Namespace: "currenttask",
		Name:      "nagging_enabled",
		Help:      "Whether the nagging flag is currently active",
	})
	r.downtime = prom.NewGauge(prom.GaugeOpts{
		Namespace: "currenttask",
		Name:      "downtime_enabled",
		Help:      "Whether the downtime flag is currently active",
	})
	r.secondsInStat = prom.NewGauge(prom.GaugeOpts{
		Namespace: "currenttask",
		Name:      "seconds_in_current_status",
		Help:      "Elapsed seconds in the current status",
	})
	reg.MustRegister(r.updates, r.ruleMatches, r.statusChanges, r.refreshes,
		r.nagging, r.downtime, r.secondsInStat)
	return r
}

// Registry returns the registry metrics are registered on.
func (r *Recorder) Registry() *prom.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) IncUpdate(result string) {
	if r == nil || r.updates == nil {
		return
	}
	r.updates.WithLabelValues(result).Inc()
}

func (r *Recorder) IncRuleMatch(list string) {
	if r == nil || r.ruleMatches == nil {
		return
	}
	r.ruleMatches.WithLabelValues(list).Inc()
}

func (r *Recorder) IncStatusChange(status string) {
	if r == nil || r.statusChanges == nil {
		return
	}
	r.statusChanges.WithLabelValues(status).Inc()
}

func (r *Recorder) IncRefresh(success bool) {
	if r == nil || r.refreshes == nil {
		return
	}
	result := "failed"
	if success {
		result = "success"
	}
	r.refreshes.WithLabelValues(result).Inc()
}

func (r *Recorder) SetFlags(nagging, downtime bool) {
	if r == nil || r.nagging == nil {
		return
	}
	r.nagging.Set(boolValue(nagging))
	r.downtime.Set(boolValue(downtime))
}

func (r *Recorder) SetSecondsInStatus(seconds int) {
	if r == nil || r.secondsInStat == nil {
		return
	}
	r.secondsInStat.Set(float64(seconds))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
