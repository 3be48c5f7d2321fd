package pipeline

import "fmt"

// DAG is the built, validated pipeline graph restricted to an enabled
// subset of stages.
type DAG struct {
	enabled map[StageID]bool
	records map[StageID]*Record
	order   []StageID // topological execution order
}

// Build validates acyclicity (always true here since dependencies is a
// fixed DAG, but a future configurable variant could introduce a cycle)
// and constructs a DAG restricted to enabled. A cycle is a configuration
// error, fatal at construction (spec §4.6).
func Build(enabled []StageID) (*DAG, error) {
	enabledSet := make(map[StageID]bool, len(enabled))
	for _, s := range enabled {
		enabledSet[s] = true
	}

	order, err := topoSort(enabledSet)
	if err != nil {
		return nil, err
	}

	records := make(map[StageID]*Record, len(order))
	for _, s := range order {
		records[s] = &Record{Stage: s, State: Pending}
	}

	d := &DAG{enabled: enabledSet, records: records, order: order}
	d.refreshReady()
	return d, nil
}

func topoSort(enabled map[StageID]bool) ([]StageID, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[StageID]int{}
	var order []StageID

	var visit func(s StageID, path []StageID) error
	visit = func(s StageID, path []StageID) error {
		switch color[s] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("pipeline: cycle detected at stage %q (path %v)", s, path)
		}
		color[s] = gray
		for _, dep := range dependencies[s] {
			if !enabled[dep] {
				continue
			}
			if err := visit(dep, append(path, s)); err != nil {
				return err
			}
		}
		color[s] = black
		order = append(order, s)
		return nil
	}

	for _, s := range AllStages() {
		if !enabled[s] {
			continue
		}
		if err := visit(s, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// dependenciesOf returns a stage's enabled dependencies.
func (d *DAG) dependenciesOf(s StageID) []StageID {
	var out []StageID
	for _, dep := range dependencies[s] {
		if d.enabled[dep] {
			out = append(out, dep)
		}
	}
	return out
}

// refreshReady promotes Pending stages whose dependencies are all
// Succeeded to Ready.
func (d *DAG) refreshReady() {
	for _, s := range d.order {
		rec := d.records[s]
		if rec.State != Pending {
			continue
		}
		allSucceeded := true
		for _, dep := range d.dependenciesOf(s) {
			if d.records[dep].State != Succeeded {
				allSucceeded = false
				break
			}
		}
		if allSucceeded {
			rec.State = Ready
		}
	}
}

// GetParallelStages returns the stages currently Ready — the set that may
// run concurrently right now.
func (d *DAG) GetParallelStages() []StageID {
	var ready []StageID
	for _, s := range d.order {
		if d.records[s].State == Ready {
			ready = append(ready, s)
		}
	}
	return ready
}

// MarkRunning transitions a Ready stage to Running.
func (d *DAG) MarkRunning(s StageID) {
	if rec, ok := d.records[s]; ok && rec.State == Ready {
		rec.State = Running
	}
}

// ProcessCompletion records a stage's outcome and propagates Ready/Skipped
// to its dependents.
func (d *DAG) ProcessCompletion(s StageID, success bool, duration int64, stageErr error) {
	rec, ok := d.records[s]
	if !ok {
		return
	}
	rec.Duration = duration
	if success {
		rec.State = Succeeded
	} else {
		rec.State = Failed
		rec.Err = stageErr
	}
	d.propagateSkips()
	d.refreshReady()
}

// propagateSkips marks every Pending/Ready stage whose dependency chain
// contains a Failed or Skipped stage as Skipped (transitively).
func (d *DAG) propagateSkips() {
	changed := true
	for changed {
		changed = false
		for _, s := range d.order {
			rec := d.records[s]
			if rec.State != Pending && rec.State != Ready {
				continue
			}
			for _, dep := range d.dependenciesOf(s) {
				depState := d.records[dep].State
				if depState == Failed || depState == Skipped {
					rec.State = Skipped
					rec.Cause = string(dep)
					changed = true
					break
				}
			}
		}
	}
}

// IsComplete reports whether every stage has reached a terminal state
// (Succeeded, Failed or Skipped).
func (d *DAG) IsComplete() bool {
	for _, s := range d.order {
		switch d.records[s].State {
		case Succeeded, Failed, Skipped:
		default:
			return false
		}
	}
	return true
}

// ExecutionOrder returns the topological order computed at Build time.
func (d *DAG) ExecutionOrder() []StageID {
	return append([]StageID(nil), d.order...)
}

// Record returns the current record for a stage.
func (d *DAG) Record(s StageID) (*Record, bool) {
	rec, ok := d.records[s]
	return rec, ok
}
