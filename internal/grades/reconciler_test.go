package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mandatoryColumns() []Column {
	return []Column{ColumnSequence, ColumnStudentID, ColumnFirstMiddleName, ColumnLastName, ColumnFinal}
}

func TestReconciler_Empty(t *testing.T) {
	table := NewReconciler().Finalize()

	assert.True(t, table.Empty())
	assert.Empty(t, table.Rows)
	assert.NotNil(t, table.Rows)
	assert.Equal(t, mandatoryColumns(), table.Columns)
}

func TestReconciler_PrunesUnobservedColumns(t *testing.T) {
	r := NewReconciler()
	r.Add(GradeRecord{Sequence: 1, StudentID: "1", LastName: "A", Final: scorePtr(800)})
	r.Add(GradeRecord{Sequence: 2, StudentID: "2", LastName: "B", Midterm: scorePtr(500), Letter: GradeC})
	r.Add(GradeRecord{Sequence: 3, StudentID: "3", LastName: "C", Note: "Vắng thi"})

	table := r.Finalize()
	assert.Equal(t, []Column{
		ColumnSequence, ColumnStudentID, ColumnFirstMiddleName, ColumnLastName,
		ColumnMidterm, ColumnFinal, ColumnLetter, ColumnNote,
	}, table.Columns)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{table.Rows[0].Sequence, table.Rows[1].Sequence, table.Rows[2].Sequence})

	// Rows that lacked an observed column keep it absent.
	assert.Nil(t, table.Rows[0].Midterm)
	assert.Nil(t, ColumnMidterm.Value(table.Rows[0]))
}

func TestReconciler_ColumnAppearsIffSupplied(t *testing.T) {
	records := []GradeRecord{
		{Sequence: 1, StudentID: "1", Practical: scorePtr(700)},
		{Sequence: 2, StudentID: "2", Average: scorePtr(650), Classification: "Khá"},
	}

	r := NewReconciler()
	for _, rec := range records {
		r.Add(rec)
	}
	table := r.Finalize()

	for _, c := range AllColumns {
		if !c.Optional() {
			assert.Contains(t, table.Columns, c)
			continue
		}
		supplied := false
		for _, rec := range records {
			if c.Value(rec) != nil {
				supplied = true
			}
		}
		assert.Equal(t, supplied, containsColumn(table.Columns, c), "column %s", c)
	}
}

func containsColumn(cols []Column, c Column) bool {
	for _, col := range cols {
		if col == c {
			return true
		}
	}
	return false
}

func TestReconciler_FinalizeOnce(t *testing.T) {
	r := NewReconciler()
	r.Add(GradeRecord{Sequence: 1, StudentID: "1"})

	first := r.Finalize()
	assert.Same(t, first, r.Finalize())
	assert.Panics(t, func() {
		r.Add(GradeRecord{Sequence: 2, StudentID: "2"})
	})
}

func TestColumnHeadersAndKeys(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range AllColumns {
		assert.NotEmpty(t, c.Header())
		assert.NotEqual(t, "unknown", c.Key())
		assert.False(t, seen[c.Key()], "duplicate key %s", c.Key())
		seen[c.Key()] = true
	}
	assert.Equal(t, "Mã số sinh viên", ColumnStudentID.Header())
	assert.Len(t, AllColumns, int(columnCount))
}

func TestColumnValue(t *testing.T) {
	rec := GradeRecord{Sequence: 4, StudentID: "007", Final: scorePtr(950), Letter: GradeA}

	assert.Equal(t, 4, ColumnSequence.Value(rec))
	assert.Equal(t, "007", ColumnStudentID.Value(rec))
	assert.Equal(t, Score(950), ColumnFinal.Value(rec))
	assert.Equal(t, "A", ColumnLetter.Value(rec))
	assert.Nil(t, ColumnNote.Value(rec))
	assert.Nil(t, ColumnAverage.Value(rec))
}
