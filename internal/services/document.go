package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

var inlineBoldRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// Heading sizes by markdown level; level 0 is the document title
var headingSizes = map[int]float64{0: 22, 1: 17, 2: 15, 3: 13, 4: 12, 5: 11, 6: 11}

// RenderDocument writes the research report as a formatted PDF under
// outputDir and returns the file path. The report body is treated as
// markdown-ish text: heading levels, bullets, numbered lists and
// **bold** runs, everything else as plain paragraphs.
func RenderDocument(location, report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("COBS_Research_%s_%s.pdf", sanitizeLocation(location), timestamp)
	path := filepath.Join(outputDir, filename)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("COBS Bread Bakery - Comprehensive Review Analysis Report", false)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Title block
	pdf.SetFont("Helvetica", "B", headingSizes[0])
	pdf.CellFormat(0, 12, tr("COBS Bread Bakery"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", headingSizes[1])
	pdf.CellFormat(0, 9, tr("Comprehensive Review Analysis Report"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeMetaLine(pdf, tr, "Location: ", location)
	writeMetaLine(pdf, tr, "Generated: ", time.Now().Format("January 2, 2006 at 3:04 PM"))
	writeMetaLine(pdf, tr, "Research Engine: ", "Google Deep Research API (Gemini)")
	writeRule(pdf)

	for _, line := range strings.Split(report, "\n") {
		writeReportLine(pdf, tr, strings.TrimSpace(line))
	}

	writeRule(pdf)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Write(4.5, tr("Disclaimer: "))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Write(4.5, tr("This report is generated from publicly available reviews and social media content. "+
		"All insights should be verified independently before making business decisions."))
	pdf.Ln(4.5)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

func writeReportLine(pdf *fpdf.Fpdf, tr func(string) string, line string) {
	switch {
	case line == "":
		pdf.Ln(3)

	case strings.HasPrefix(line, "#"):
		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		if level > 6 {
			level = 6
		}
		text := strings.TrimSpace(line[level:])
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", headingSizes[level])
		pdf.MultiCell(0, headingSizes[level]*0.5, tr(text), "", "L", false)
		pdf.Ln(1)

	case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetX(pdf.GetX() + 5)
		writeInline(pdf, tr, "• "+line[2:])

	case isNumberedItem(line):
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetX(pdf.GetX() + 5)
		writeInline(pdf, tr, line)

	case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4:
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 5, tr(line[2:len(line)-2]), "", "L", false)

	default:
		pdf.SetFont("Helvetica", "", 11)
		writeInline(pdf, tr, line)
	}
}

// writeInline renders a paragraph line, toggling bold for **...** runs
func writeInline(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	last := 0
	for _, loc := range inlineBoldRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			pdf.SetFontStyle("")
			pdf.Write(5, tr(text[last:loc[0]]))
		}
		pdf.SetFontStyle("B")
		pdf.Write(5, tr(text[loc[2]:loc[3]]))
		last = loc[1]
	}
	if last < len(text) {
		pdf.SetFontStyle("")
		pdf.Write(5, tr(text[last:]))
	}
	pdf.SetFontStyle("")
	pdf.Ln(5)
}

func writeMetaLine(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Write(5.5, tr(label))
	pdf.SetFont("Helvetica", "", 11)
	pdf.Write(5.5, tr(value))
	pdf.Ln(5.5)
}

func writeRule(pdf *fpdf.Fpdf) {
	pdf.Ln(3)
	x, y := pdf.GetX(), pdf.GetY()
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	pdf.Line(x, y, pageW-right, y)
	pdf.SetXY(left, y+3)
}

func isNumberedItem(line string) bool {
	if len(line) < 3 || line[0] < '0' || line[0] > '9' {
		return false
	}
	return line[1] == '.' || line[1] == ')' || line[1] == ':'
}

// sanitizeLocation keeps the filename portable: alphanumerics, spaces,
// hyphens and underscores survive, everything else becomes an underscore
func sanitizeLocation(location string) string {
	var b strings.Builder
	for _, c := range location {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == ' ', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
		if b.Len() >= 50 {
			break
		}
	}
	return b.String()
}
