package manager

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"opecbrain/entity"
	"opecbrain/metrics"
	"opecbrain/query"
)

// Backend persists the whole collection at once.
type Backend interface {
	Init() error
	ReadAll() ([]entity.Record, error)
	WriteAll(records []entity.Record) error
}

// ErrorHook receives every storage failure the manager recovers from,
// op being "init", "read" or "write".
type ErrorHook func(op string, err error)

type Option func(*RecordManager)

func WithLogger(l *slog.Logger) Option {
	return func(rm *RecordManager) { rm.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(rm *RecordManager) { rm.metrics = m }
}

func WithErrorHook(h ErrorHook) Option {
	return func(rm *RecordManager) { rm.onError = h }
}

func WithClock(now func() time.Time) Option {
	return func(rm *RecordManager) { rm.now = now }
}

// RecordManager is the single entry point to the records. Writers hold the
// lock for a whole read-modify-write cycle; readers share it.
type RecordManager struct {
	backend Backend
	mutex   sync.RWMutex
	logger  *slog.Logger
	metrics *metrics.Metrics
	onError ErrorHook
	now     func() time.Time
}

func NewRecordManager(backend Backend, opts ...Option) *RecordManager {
	rm := &RecordManager{
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(rm)
	}
	return rm
}

// Load returns the collection in insertion order. Missing storage is created
// empty; unreadable storage is reported and read as empty. Only a failure to
// create the storage is returned.
func (rm *RecordManager) Load() ([]entity.Record, error) {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	records, err := rm.read()
	if errors.Is(err, ErrStorageRead) {
		return []entity.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]entity.Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out, nil
}

// FilterByDateRange loads the collection and keeps the records with a
// timestamp dated in [start, end].
func (rm *RecordManager) FilterByDateRange(start, end time.Time) ([]entity.Record, error) {
	records, err := rm.Load()
	if err != nil {
		return nil, err
	}
	return query.FilterByDateRange(records, start, end), nil
}

// Upsert stamps status on the record named name, creating it at the end of
// the collection when no record matches case-insensitively, then persists
// the collection. A nil record with an error wrapping ErrStorageWrite, or
// ErrStorageRead when the stored collection could not be read, means nothing
// was saved.
//
// An unrecognized status still creates the record but updates no field.
// Callers are expected to validate with entity.ParseStatus first.
func (rm *RecordManager) Upsert(name string, status entity.Status) (*entity.Record, error) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	records, err := rm.read()
	if err != nil {
		return nil, err
	}

	idx := indexOf(records, name)
	if idx < 0 {
		records = append(records, entity.NewRecord(name))
		idx = len(records) - 1
	}
	rec := &records[idx]
	if !rec.Apply(status, entity.NewTimestamp(rm.now())) {
		rm.logger.Warn("unknown status, no field updated",
			slog.String("object", name), slog.String("status", string(status)))
	}

	if err := rm.write(records); err != nil {
		return nil, err
	}
	rm.metrics.ObserveUpsert(string(rec.Status))
	out := rec.Clone()
	return &out, nil
}

// Import merges records into the collection without deleting or overwriting
// anything: unknown names are appended in order, known names only get their
// empty timestamps filled. It returns how many records were appended and how
// many existing ones changed.
func (rm *RecordManager) Import(incoming []entity.Record) (int, int, error) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	records, err := rm.read()
	if err != nil {
		return 0, 0, err
	}

	added, merged := 0, 0
	for _, in := range incoming {
		name := strings.TrimSpace(in.Object)
		if name == "" {
			continue
		}
		idx := indexOf(records, name)
		if idx < 0 {
			rec := in.Clone()
			rec.Object = name
			if st, err := entity.ParseStatus(string(rec.Status)); err == nil {
				rec.Status = st
			} else {
				rec.Status = ""
			}
			records = append(records, rec)
			added++
			continue
		}
		if fillMissing(&records[idx], in) {
			merged++
		}
	}
	if added == 0 && merged == 0 {
		return 0, 0, nil
	}
	if err := rm.write(records); err != nil {
		return 0, 0, err
	}
	return added, merged, nil
}

// read runs with the lock held. Corrupt storage reads as empty; any other
// read failure is returned wrapping ErrStorageRead so that writers do not
// replace a collection they could not see.
func (rm *RecordManager) read() ([]entity.Record, error) {
	if err := rm.backend.Init(); err != nil {
		if errors.Is(err, query.ErrCorrupt) {
			rm.report("read", fmt.Errorf("%w: %w", ErrStorageRead, err))
			return []entity.Record{}, nil
		}
		rm.report("init", err)
		return nil, fmt.Errorf("%w: %w", ErrStorageInit, err)
	}
	records, err := rm.backend.ReadAll()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStorageRead, err)
		rm.report("read", err)
		// an undecodable document was copied aside, start over empty
		if errors.Is(err, query.ErrCorrupt) {
			return []entity.Record{}, nil
		}
		return nil, err
	}
	rm.metrics.SetRecords(len(records))
	return records, nil
}

func (rm *RecordManager) write(records []entity.Record) error {
	if err := rm.backend.WriteAll(records); err != nil {
		err = fmt.Errorf("%w: %w", ErrStorageWrite, err)
		rm.report("write", err)
		return err
	}
	rm.metrics.SetRecords(len(records))
	return nil
}

func (rm *RecordManager) report(op string, err error) {
	rm.logger.Error("storage failure", slog.String("op", op), slog.Any("error", err))
	rm.metrics.ObserveFailure(op)
	if rm.onError != nil {
		rm.onError(op, err)
	}
}

func indexOf(records []entity.Record, name string) int {
	for i := range records {
		if strings.EqualFold(records[i].Object, name) {
			return i
		}
	}
	return -1
}

func fillMissing(dst *entity.Record, src entity.Record) bool {
	changed := false
	fill := func(field **entity.Timestamp, v *entity.Timestamp) {
		if *field == nil && v != nil {
			c := *v
			*field = &c
			changed = true
		}
	}
	fill(&dst.Raised, src.Raised)
	fill(&dst.Lowered, src.Lowered)
	fill(&dst.Ready, src.Ready)
	return changed
}
