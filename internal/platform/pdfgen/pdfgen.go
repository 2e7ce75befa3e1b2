// Package pdfgen renders printable documents for the front desk: payment
// receipts and lab result reports. Layouts form a closed set selected by the
// document kind; adding a layout means adding a kind and a render case.
package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Kind selects the document layout.
type Kind string

const (
	KindReceipt   Kind = "receipt"
	KindLabReport Kind = "lab_report"
)

// PatientInfo is the header block shared by all document kinds.
type PatientInfo struct {
	MrNo          int
	Name          string
	Age           int
	Gender        string
	Doctor        string
	RegDate       time.Time
	ReportingDate time.Time
}

// ReceiptData is the payload for KindReceipt.
type ReceiptData struct {
	Tests  []ReceiptLine
	Amount float64
}

// ReceiptLine is one billed test on a receipt.
type ReceiptLine struct {
	Name  string
	Price float64
}

// LabReportData is the payload for KindLabReport.
type LabReportData struct {
	Results []TestResult
	Remarks string
}

// TestResult is one row of the lab report results table.
type TestResult struct {
	TestName    string
	Result      string
	Unit        string
	NormalRange string
}

// Document is a tagged union: Kind picks the layout, and exactly one of
// Receipt or LabReport must be set to match it.
type Document struct {
	Kind      Kind
	Patient   PatientInfo
	Receipt   *ReceiptData
	LabReport *LabReportData
}

// Renderer produces PDF bytes for documents.
type Renderer struct {
	labName    string
	labAddress string
}

// NewRenderer creates a renderer with the letterhead printed on every page.
func NewRenderer(labName, labAddress string) *Renderer {
	return &Renderer{labName: labName, labAddress: labAddress}
}

// Render produces the PDF for doc. An unknown kind or a kind/payload
// mismatch is an error.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	switch doc.Kind {
	case KindReceipt:
		if doc.Receipt == nil {
			return nil, fmt.Errorf("receipt document has no receipt data")
		}
		return r.renderReceipt(doc.Patient, doc.Receipt)
	case KindLabReport:
		if doc.LabReport == nil {
			return nil, fmt.Errorf("lab report document has no report data")
		}
		return r.renderLabReport(doc.Patient, doc.LabReport)
	default:
		return nil, fmt.Errorf("unknown document kind %q", doc.Kind)
	}
}

func (r *Renderer) newPage(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, r.labName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, r.labAddress, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "T", 1, "C", false, 0, "")
	pdf.Ln(2)
	return pdf
}

func (r *Renderer) patientBlock(pdf *fpdf.Fpdf, p PatientInfo) {
	pdf.SetFont("Helvetica", "", 10)
	left := [][2]string{
		{"MR No", fmt.Sprintf("%d", p.MrNo)},
		{"Patient", p.Name},
		{"Age / Gender", fmt.Sprintf("%d / %s", p.Age, p.Gender)},
	}
	right := [][2]string{
		{"Referred by", p.Doctor},
		{"Registered", p.RegDate.Format("02 Jan 2006")},
		{"Reporting", p.ReportingDate.Format("02 Jan 2006")},
	}
	for i := range left {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, left[i][0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(65, 6, left[i][1], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, right[i][0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, right[i][1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *Renderer) renderReceipt(p PatientInfo, data *ReceiptData) ([]byte, error) {
	pdf := r.newPage("PAYMENT RECEIPT")
	r.patientBlock(pdf, p)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 7, "Test", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Price", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range data.Tests {
		pdf.CellFormat(140, 7, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("%.2f", line.Price), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("%.2f", data.Amount), "1", 1, "R", false, 0, "")

	return output(pdf)
}

func (r *Renderer) renderLabReport(p PatientInfo, data *LabReportData) ([]byte, error) {
	pdf := r.newPage("LABORATORY REPORT")
	r.patientBlock(pdf, p)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Test", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Result", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Unit", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Normal Range", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, res := range data.Results {
		pdf.CellFormat(60, 7, res.TestName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, res.Result, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, res.Unit, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, res.NormalRange, "1", 1, "L", false, 0, "")
	}

	if data.Remarks != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Remarks", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, data.Remarks, "", "L", false)
	}

	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
