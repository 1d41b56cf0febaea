package engine

import "time"

// Engine computes Metrics snapshots under a fixed Policy. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	policy Policy
}

// New returns an Engine for p. Callers should Validate p first; New does
// not.
func New(p Policy) *Engine {
	return &Engine{policy: p}
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() Policy {
	p := e.policy
	p.Windows = append([]Window(nil), e.policy.Windows...)
	return p
}

// Compute builds a new Metrics snapshot from the given history and
// configuration as of today. Inputs are not modified.
//
// Order: window deltas, maintenance (calibrated, then the configured
// source), projections, goal progress.
func (e *Engine) Compute(weights []WeightSample, logs []EnergyLogSample, cfg Config, today time.Time) Metrics {
	p := e.policy
	ws := cleanWeights(weights)
	ls := cleanLogs(logs)
	today = Day(today)

	var current *float64
	if latest, ok := latestWeight(ws); ok {
		current = ptr(latest.WeightKg)
	}

	deltas := weightChangeByWindow(ws, p.Windows, today)
	tw := p.trendWindow()
	trendDelta, ok := deltas[tw.Label]
	if !ok {
		trendDelta = windowDelta(ws, tw, today)
	}

	cal := calibrate(ws, ls, today, p)
	maintenance, source := resolveMaintenance(cfg, current, cal.Kcal, p)

	points, rates := project(projectionInput{
		cfg:         cfg,
		policy:      p,
		trendDelta:  trendDelta,
		intake:      cal.Intake,
		maintenance: maintenance,
	}, current, today)

	var primary []ProjectionPoint
	for _, pt := range points {
		if pt.Method == WeightTrend30Day {
			primary = append(primary, pt)
		}
	}
	prog := evaluate(current, cfg, primary, rates[WeightTrend30Day], p)

	return Metrics{
		ComputedFor:               today,
		CurrentWeightKg:           current,
		EstimatedMaintenanceKcal:  maintenance,
		MaintenanceSource:         source,
		CalibratedMaintenanceKcal: cal.Kcal,
		CalibrationWarning:        cal.Reason,
		WeightChangeByWindow:      deltas,
		Rates:                     rates,
		Projections:               points,
		GoalReached:               prog.Reached,
		DaysRemaining:             prog.DaysRemaining,
		LogicDescription:          prog.Logic,
		Warning:                   prog.Warning,
		ProgressWarningMessage:    prog.Message,
	}
}
