package grades

// TableLayout maps columns to cell positions of an extracted table row.
type TableLayout struct {
	cells [columnCount]int
	// width is the header's cell count; zero for the default layout.
	width int
}

// DefaultTableLayout is used until a header row has been seen: sequence,
// student ID, full name, midterm, periodic, practical, final, average,
// letter grade, note.
func DefaultTableLayout() TableLayout {
	var l TableLayout
	for i := range l.cells {
		l.cells[i] = -1
	}
	order := []Column{
		ColumnSequence, ColumnStudentID, ColumnFirstMiddleName,
		ColumnMidterm, ColumnPeriodic, ColumnPractical, ColumnFinal,
		ColumnAverage, ColumnLetter, ColumnNote,
	}
	for i, c := range order {
		l.cells[c] = i
	}
	return l
}

// Index returns the cell position of c, or -1 when the layout lacks it.
func (l TableLayout) Index(c Column) int {
	return l.cells[c]
}

// Width returns the header cell count the layout was learned from.
func (l TableLayout) Width() int {
	return l.width
}

func (l TableLayout) cell(cells []string, c Column) string {
	i := l.cells[c]
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// headerRule assigns a column to the first header cell whose words match.
type headerRule struct {
	column   Column
	keywords keywordSet
	// exact requires the whole cell to equal a keyword.
	exact bool
}

// headerRules are tried in order for every header cell, so longer phrases
// such as "ghi chú" win over the shorter "chữ".
var headerRules = []headerRule{
	{column: ColumnNote, keywords: newKeywordSet("Ghi chú")},
	{column: ColumnClassification, keywords: newKeywordSet("Xếp loại")},
	{column: ColumnLetter, keywords: newKeywordSet("Điểm chữ", "Chữ")},
	{column: ColumnMidterm, keywords: newKeywordSet("Giữa kỳ", "GK")},
	{column: ColumnPeriodic, keywords: newKeywordSet("Thường kỳ", "Quá trình", "TK")},
	{column: ColumnPractical, keywords: newKeywordSet("Thực hành", "TH")},
	{column: ColumnAverage, keywords: newKeywordSet("Trung bình", "Tổng kết", "TB", "ĐTB")},
	{column: ColumnFinal, keywords: newKeywordSet("Cuối kỳ", "Thi", "CK")},
	{column: ColumnSequence, keywords: newKeywordSet("STT", "TT")},
	{column: ColumnStudentID, keywords: newKeywordSet("MSSV", "Mã số sinh viên", "Mã sinh viên", "Mã SV", "Mã số")},
	{column: ColumnFirstMiddleName, keywords: newKeywordSet("Họ và tên", "Họ tên", "Họ đệm", "Họ")},
	{column: ColumnLastName, keywords: newKeywordSet("Tên"), exact: true},
}

// LearnLayout derives a layout from a header row. It succeeds when the
// row names at least the student ID and name columns.
func LearnLayout(cells []string) (TableLayout, bool) {
	var l TableLayout
	for i := range l.cells {
		l.cells[i] = -1
	}
	l.width = len(cells)

	for i, cell := range cells {
		key := foldKey(cell)
		if key == "" {
			continue
		}
		for _, rule := range headerRules {
			if l.cells[rule.column] >= 0 {
				continue
			}
			if rule.exact {
				if !rule.keywords.equal(key) {
					continue
				}
			} else if !rule.keywords.match(key) {
				continue
			}
			l.cells[rule.column] = i
			break
		}
	}

	if l.cells[ColumnStudentID] < 0 || l.cells[ColumnFirstMiddleName] < 0 {
		return TableLayout{}, false
	}
	if l.cells[ColumnSequence] < 0 {
		l.cells[ColumnSequence] = 0
	}
	return l, true
}
