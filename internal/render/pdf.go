package render

import (
    "fmt"
    "io"

    "github.com/jung-kurt/gofpdf"

    "github.com/hyperifyio/textextract/internal/extract"
    "github.com/hyperifyio/textextract/internal/patterns"
)

// PDF renders a minimal one-column report: a title, then one heading per
// category followed by its matches. URLs become clickable links. Core fonts
// only cover cp1252, so text goes through the gofpdf translator and runes
// outside that code page degrade to substitutes.
func PDF(w io.Writer, res extract.Result) error {
    pdf := gofpdf.New("P", "mm", "A4", "")
    tr := pdf.UnicodeTranslatorFromDescriptor("")
    pdf.SetTitle("Extracted Data", true)
    pdf.SetFont("Helvetica", "B", 14)
    pdf.AddPage()
    pdf.CellFormat(0, 10, "Extracted Data", "", 1, "L", false, 0, "")

    if res.Empty() {
        pdf.SetFont("Helvetica", "", 11)
        pdf.MultiCell(0, 5, noMatches, "", "L", false)
        return output(pdf, w)
    }

    for _, m := range res.Categories() {
        pdf.SetFont("Helvetica", "B", 12)
        pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s (%d)", m.Category, m.Count())), "", 1, "L", false, 0, "")
        pdf.SetFont("Helvetica", "", 11)
        for _, item := range m.Items {
            if m.Category == patterns.URLs {
                pdf.WriteLinkString(5, tr(item), item)
                pdf.Ln(6)
                continue
            }
            pdf.MultiCell(0, 5, tr(item), "", "L", false)
        }
        pdf.Ln(3)
    }
    return output(pdf, w)
}

func output(pdf *gofpdf.Fpdf, w io.Writer) error {
    if err := pdf.Error(); err != nil {
        return fmt.Errorf("render pdf: %w", err)
    }
    if err := pdf.Output(w); err != nil {
        return fmt.Errorf("write pdf: %w", err)
    }
    return nil
}
