package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// LetterData carries everything needed to render a placement letter.
type LetterData struct {
	SchoolName    string
	SchoolAddress string
	City          string
	Headmaster    string
	LetterNumber  string
	IssuedDate    string
	IndustriName  string
	IndustriAddr  string
	StartDate     string
	EndDate       string
	Students      []LetterStudent
}

// LetterStudent is one roster row in the letter body.
type LetterStudent struct {
	Name    string
	NISN    string
	Kelas   string
	Jurusan string
}

// LetterRenderer produces internship introduction letters (surat pengantar PKL).
type LetterRenderer struct{}

// NewLetterRenderer constructs a letter renderer.
func NewLetterRenderer() *LetterRenderer {
	return &LetterRenderer{}
}

// Render generates the PDF document for an approved application.
func (r *LetterRenderer) Render(data LetterData) ([]byte, error) {
	if len(data.Students) == 0 {
		return nil, fmt.Errorf("letter requires at least one student")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 7, strings.ToUpper(data.SchoolName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, data.SchoolAddress, "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetLineWidth(0.6)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 6, "SURAT PENGANTAR PRAKTIK KERJA LAPANGAN", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Nomor: %s", data.LetterNumber), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.MultiCell(0, 5, fmt.Sprintf(
		"Dengan hormat, bersama surat ini kami mengantarkan siswa berikut untuk melaksanakan "+
			"Praktik Kerja Lapangan di %s, %s, terhitung mulai %s sampai dengan %s.",
		data.IndustriName, data.IndustriAddr, data.StartDate, data.EndDate), "", "J", false)
	pdf.Ln(4)

	headers := []string{"No", "Nama", "NISN", "Kelas", "Jurusan"}
	widths := []float64{10, 60, 30, 30, 40}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i, s := range data.Students {
		pdf.CellFormat(widths[0], 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 7, s.Name, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, s.NISN, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, s.Kelas, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 7, s.Jurusan, "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.MultiCell(0, 5,
		"Demikian surat pengantar ini kami sampaikan. Atas perhatian dan kerja samanya kami ucapkan terima kasih.",
		"", "J", false)
	pdf.Ln(10)

	pdf.SetX(120)
	pdf.CellFormat(70, 5, fmt.Sprintf("%s, %s", data.City, data.IssuedDate), "", 1, "C", false, 0, "")
	pdf.SetX(120)
	pdf.CellFormat(70, 5, "Kepala Sekolah,", "", 1, "C", false, 0, "")
	pdf.Ln(18)
	pdf.SetX(120)
	pdf.SetFont("Arial", "BU", 10)
	pdf.CellFormat(70, 5, data.Headmaster, "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render letter: %w", err)
	}
	return buf.Bytes(), nil
}
