package grades

import "errors"

// ErrNoRows is returned when a table with no accepted rows would be rendered.
var ErrNoRows = errors.New("no grade rows were extracted")

// Presence records which optional columns were supplied by at least one row
// of the document.
type Presence struct {
	Midterm        bool
	Periodic       bool
	Practical      bool
	Average        bool
	Letter         bool
	Classification bool
	Note           bool
}

// Observe ORs the columns supplied by r into p.
func (p *Presence) Observe(r GradeRecord) {
	p.Midterm = p.Midterm || r.Midterm != nil
	p.Periodic = p.Periodic || r.Periodic != nil
	p.Practical = p.Practical || r.Practical != nil
	p.Average = p.Average || r.Average != nil
	p.Letter = p.Letter || r.Letter != ""
	p.Classification = p.Classification || r.Classification != ""
	p.Note = p.Note || r.Note != ""
}

// Has reports whether column c belongs to the final schema.
func (p Presence) Has(c Column) bool {
	switch c {
	case ColumnMidterm:
		return p.Midterm
	case ColumnPeriodic:
		return p.Periodic
	case ColumnPractical:
		return p.Practical
	case ColumnAverage:
		return p.Average
	case ColumnLetter:
		return p.Letter
	case ColumnClassification:
		return p.Classification
	case ColumnNote:
		return p.Note
	default:
		return !c.Optional()
	}
}

// Columns returns the mandatory columns plus every observed optional
// column, in output order.
func (p Presence) Columns() []Column {
	cols := make([]Column, 0, len(AllColumns))
	for _, c := range AllColumns {
		if p.Has(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Table is the reconciled result: rows in source order and the columns
// that survived pruning.
type Table struct {
	Columns []Column      `json:"columns"`
	Rows    []GradeRecord `json:"rows"`
}

// Empty reports whether no rows were accepted.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Reconciler accumulates accepted rows and the document's column presence.
// It is finalized exactly once.
type Reconciler struct {
	presence Presence
	rows     []GradeRecord
	table    *Table
}

// NewReconciler creates an empty reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Add appends an accepted record. Adding after Finalize panics.
func (r *Reconciler) Add(rec GradeRecord) {
	if r.table != nil {
		panic("grades: Reconciler.Add called after Finalize")
	}
	r.presence.Observe(rec)
	r.rows = append(r.rows, rec)
}

// Len returns the number of rows added so far.
func (r *Reconciler) Len() int {
	return len(r.rows)
}

// Presence returns the accumulated column presence.
func (r *Reconciler) Presence() Presence {
	return r.presence
}

// Finalize freezes the accumulator and returns the pruned table. Later
// calls return the same table.
func (r *Reconciler) Finalize() *Table {
	if r.table == nil {
		r.table = &Table{
			Columns: r.presence.Columns(),
			Rows:    r.rows,
		}
		if r.table.Rows == nil {
			r.table.Rows = []GradeRecord{}
		}
	}
	return r.table
}
