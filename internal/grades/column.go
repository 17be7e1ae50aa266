package grades

// Column is one column of the reconciled grade table, in output order.
type Column int

const (
	ColumnSequence Column = iota
	ColumnStudentID
	ColumnFirstMiddleName
	ColumnLastName
	ColumnMidterm
	ColumnPeriodic
	ColumnPractical
	ColumnFinal
	ColumnAverage
	ColumnLetter
	ColumnClassification
	ColumnNote

	columnCount
)

// AllColumns lists every column in output order.
var AllColumns = []Column{
	ColumnSequence,
	ColumnStudentID,
	ColumnFirstMiddleName,
	ColumnLastName,
	ColumnMidterm,
	ColumnPeriodic,
	ColumnPractical,
	ColumnFinal,
	ColumnAverage,
	ColumnLetter,
	ColumnClassification,
	ColumnNote,
}

// Optional reports whether the column is dropped when no row supplies it.
func (c Column) Optional() bool {
	switch c {
	case ColumnSequence, ColumnStudentID, ColumnFirstMiddleName, ColumnLastName, ColumnFinal:
		return false
	default:
		return true
	}
}

// Header returns the spreadsheet header used by the grade sheets.
func (c Column) Header() string {
	switch c {
	case ColumnSequence:
		return "STT"
	case ColumnStudentID:
		return "Mã số sinh viên"
	case ColumnFirstMiddleName:
		return "Họ đệm"
	case ColumnLastName:
		return "Tên"
	case ColumnMidterm:
		return "Điểm giữa kỳ"
	case ColumnPeriodic:
		return "Điểm thường kỳ"
	case ColumnPractical:
		return "Điểm thực hành"
	case ColumnFinal:
		return "Điểm cuối kỳ"
	case ColumnAverage:
		return "Điểm trung bình"
	case ColumnLetter:
		return "Điểm chữ"
	case ColumnClassification:
		return "Xếp loại"
	case ColumnNote:
		return "Ghi chú"
	default:
		return ""
	}
}

// Key returns a stable machine name for JSON output.
func (c Column) Key() string {
	switch c {
	case ColumnSequence:
		return "sequence"
	case ColumnStudentID:
		return "student_id"
	case ColumnFirstMiddleName:
		return "first_middle_name"
	case ColumnLastName:
		return "last_name"
	case ColumnMidterm:
		return "midterm"
	case ColumnPeriodic:
		return "periodic"
	case ColumnPractical:
		return "practical"
	case ColumnFinal:
		return "final"
	case ColumnAverage:
		return "average"
	case ColumnLetter:
		return "letter"
	case ColumnClassification:
		return "classification"
	case ColumnNote:
		return "note"
	default:
		return "unknown"
	}
}

// String returns the column key.
func (c Column) String() string {
	return c.Key()
}

// Value returns the record's value for the column, or nil when absent.
// Scores are returned as Score, text as string and the sequence as int.
func (c Column) Value(r GradeRecord) any {
	score := func(s *Score) any {
		if s == nil {
			return nil
		}
		return *s
	}
	text := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}

	switch c {
	case ColumnSequence:
		return r.Sequence
	case ColumnStudentID:
		return r.StudentID
	case ColumnFirstMiddleName:
		return r.FirstMiddleName
	case ColumnLastName:
		return r.LastName
	case ColumnMidterm:
		return score(r.Midterm)
	case ColumnPeriodic:
		return score(r.Periodic)
	case ColumnPractical:
		return score(r.Practical)
	case ColumnFinal:
		return score(r.Final)
	case ColumnAverage:
		return score(r.Average)
	case ColumnLetter:
		return text(string(r.Letter))
	case ColumnClassification:
		return text(r.Classification)
	case ColumnNote:
		return text(r.Note)
	default:
		return nil
	}
}
