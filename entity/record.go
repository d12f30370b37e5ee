package entity

// Record is the persisted row of one object: the last time each status was
// recorded and the status of the most recent write.
type Record struct {
	Object  string     `json:"objeto" db:"objeto"`
	Raised  *Timestamp `json:"subiu" db:"subiu"`
	Lowered *Timestamp `json:"desceu" db:"desceu"`
	Ready   *Timestamp `json:"pronto" db:"pronto"`
	Status  Status     `json:"status" db:"status"`
}

func NewRecord(object string) Record {
	return Record{Object: object}
}

// Apply stamps the field matching status with ts and mirrors it into Status.
// An unrecognized status leaves the record untouched and returns false.
func (r *Record) Apply(status Status, ts *Timestamp) bool {
	st, err := ParseStatus(string(status))
	if err != nil {
		return false
	}
	switch st {
	case StatusRaised:
		r.Raised = ts
	case StatusLowered:
		r.Lowered = ts
	case StatusReady:
		r.Ready = ts
	}
	r.Status = st
	return true
}

// Timestamps returns the three fields in column order.
func (r Record) Timestamps() [3]*Timestamp {
	return [3]*Timestamp{r.Raised, r.Lowered, r.Ready}
}

// Dates returns the YYYY-MM-DD of every timestamp that is set.
func (r Record) Dates() []string {
	dates := make([]string, 0, 3)
	for _, ts := range r.Timestamps() {
		if ts != nil {
			dates = append(dates, ts.Date())
		}
	}
	return dates
}

// Clone copies the record so callers cannot alias the store's timestamps.
func (r Record) Clone() Record {
	out := r
	out.Raised = cloneTimestamp(r.Raised)
	out.Lowered = cloneTimestamp(r.Lowered)
	out.Ready = cloneTimestamp(r.Ready)
	return out
}

func cloneTimestamp(ts *Timestamp) *Timestamp {
	if ts == nil {
		return nil
	}
	c := *ts
	return &c
}
