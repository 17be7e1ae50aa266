package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	GradesExtractFileDescription = `Convert a PDF grade sheet into a spreadsheet of student grades.

**When to use:** Need the grade table of a class report (bảng điểm) as XLSX, CSV or JSON.

**Why it's useful:** Recognizes grade rows with or without the midterm, periodic and practical columns, keeps only the columns the document actually uses, and reports every line it could not read instead of failing.

**Examples:**
• Convert a class report: "Extract the grades of k65-toan.pdf to a spreadsheet"
• Check before writing: "Dry run the extraction of bang-diem-ly.pdf and show the rejected rows"
• Export for a script: "Extract k66.pdf as json into /data/out"

**Outcomes:**
• complete: every grade row was extracted
• partial: some rows matched a known layout but failed validation (for example an unknown letter grade)
• no_data: no grade rows were found and no file was written

**Best practices:** Validate scanned documents first; set letters to ABCD for schools without an F grade.`

	GradesValidateFileDescription = `Verify that a PDF is readable and find out whether it has a text layer.

**When to use:** Before extracting grades from an unknown file, especially scans.

**Why it's useful:** Reports the page count, pages with text and embedded images, so scanned grade sheets can be routed to OCR.

**Examples:**
• Upload check: "Validate the grade sheet a lecturer just uploaded"
• Triage: "Which PDFs in /sheets are scans without text?"

**Best practices:** content_type "scanned_images" means extraction needs OCR enabled on the server.`

	GradesSearchDirectoryDescription = `Find PDF grade sheets in the configured directory.

**When to use:** Need to locate grade sheets by course, class or term before extracting them.

**Why it's useful:** Matches file names word by word, ignoring case and Vietnamese diacritics, so "toan" finds "Toán".

**Examples:**
• Find a course: "Find grade sheets for toán cao cấp"
• List everything: "Show all PDFs in the grade sheet directory"

**Best practices:** Use short queries made of distinctive words from the file name.`

	GradesServerInfoDescription = `Get server settings, available tools and the grade sheets on hand.

**When to use:** At the start of a session to learn where grade sheets are read from and how results are written.

**Why it's useful:** Shows the default and output directories, the accepted letter grades, the output format and whether OCR is available.

**Best practices:** Call this first when the directory layout is unknown.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"grades_extract_file":     GradesExtractFileDescription,
	"grades_validate_file":    GradesValidateFileDescription,
	"grades_search_directory": GradesSearchDirectoryDescription,
	"grades_server_info":      GradesServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all described tools in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
