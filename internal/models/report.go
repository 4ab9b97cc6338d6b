package models

// BatchReport aggregates the outcomes of a batch run
type BatchReport struct {
	OK          int
	Failed      int
	FailedRoots []string

	// FailListPath is where the failure list was persisted. The file is
	// written on every run, empty when all jobs succeeded.
	FailListPath string
}

// Record accumulates one finished job into the report
func (r *BatchReport) Record(root string, ok bool) {
	if ok {
		r.OK++
		return
	}
	r.Failed++
	r.FailedRoots = append(r.FailedRoots, root)
}
