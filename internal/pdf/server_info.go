package pdf

import "fmt"

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "grades_extract_file",
			Description: "Extract the grade table of a PDF grade sheet into a spreadsheet",
			Usage: "Use this tool to convert a grade sheet. Rows that do not look like grade records " +
				"are reported as diagnostics instead of failing the extraction.",
			Parameters: "path (required): Full path to the PDF file, " +
				"format (optional): xlsx, csv or json, " +
				"letters (optional): ABCD or ABCDF, " +
				"output_dir (optional): Directory for the output file, " +
				"dry_run (optional): Extract without writing a file",
		},
		{
			Name:        "grades_validate_file",
			Description: "Validate that a file is a readable PDF and report whether it has text",
			Usage:       "Use this tool before extraction to find scanned documents that need OCR.",
			Parameters:  "path (required): Full path to the PDF file",
		},
		{
			Name:        "grades_search_directory",
			Description: "Search for PDF grade sheets in a directory",
			Usage:       "Use this tool to find grade sheets. Matching ignores case and Vietnamese diacritics.",
			Parameters: "directory (optional): Directory path to search (uses default if empty), " +
				"query (optional): Words that must appear in the file name",
		},
		{
			Name:        "grades_server_info",
			Description: "Get server settings, available tools and directory contents",
			Usage:       "Use this tool first to learn where grade sheets are and how output is written.",
			Parameters:  "none",
		},
	}
}

func usageGuidance(cfg ServiceConfig) string {
	ocrNote := "OCR is disabled: scanned pages are reported as empty pages."
	if cfg.OCR {
		ocrNote = "OCR is enabled for pages without text (languages: " + cfg.OCRLanguages + ")."
	}

	return `Grade Extractor Usage Guide:

1. FIND GRADE SHEETS:
   - Use 'grades_search_directory' to list PDF files

2. CHECK THE DOCUMENT:
   - Use 'grades_validate_file'; content_type "scanned_images" means the
     document has no text layer

3. EXTRACT:
   - Use 'grades_extract_file'; the result reports an outcome:
     * "complete": every grade row was extracted
     * "partial": some rows were rejected, see diagnostics
     * "no_data": no grade rows were found and no file was written
   - Optional columns (midterm, periodic, practical, average, letter,
     classification, note) appear only when the document has them

IMPORTANT NOTES:
- Letter grades are validated against ` + cfg.Letters.String() + `
- Files up to ` + fmt.Sprintf("%d", cfg.MaxFileSize/(1024*1024)) + `MB are accepted
- ` + ocrNote
}
