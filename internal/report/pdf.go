package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"djdash/internal/analytics"
	"djdash/internal/dashboard"
	"djdash/internal/domain"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

type pdfReport struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	ds   *dashboard.Dataset
	opts Options
}

// WritePDF renders a summary document: constituents by market, per-stock
// performance and the correlation ranking. corr may be nil when the matrix
// is unavailable.
func WritePDF(w io.Writer, ds *dashboard.Dataset, corr *domain.CorrelationMatrix, opts Options, generated time.Time) error {
	r := &pdfReport{
		pdf:  fpdf.New("P", "mm", "A4", ""),
		ds:   ds,
		opts: opts.withDefaults(),
	}
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle("Dow Jones Stocks", true)

	r.addOverviewPage(generated)
	r.addPerformancePage()
	if corr != nil {
		r.addCorrelationPage(*corr)
	}

	if err := r.pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

func (r *pdfReport) heading(s string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 9, r.tr(s), "", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

func (r *pdfReport) headerRow(widths []float64, cols []string) {
	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.SetFillColor(230, 235, 242)
	r.pdf.SetTextColor(0, 51, 102)
	for i, c := range cols {
		r.pdf.CellFormat(widths[i], 6, r.tr(c), "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)
	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
}

func (r *pdfReport) row(widths []float64, aligns string, cells []string) {
	for i, c := range cells {
		r.pdf.CellFormat(widths[i], 5.5, r.tr(c), "1", 0, aligns[i:i+1], false, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *pdfReport) addOverviewPage(generated time.Time) {
	r.pdf.AddPage()
	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, "Dow Jones Stocks", "", 1, "C", false, 0, "")
	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", generated.Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(8)

	r.heading("Stocks per market")
	counts := analytics.CountByExchange(r.ds.Constituents)
	widths := []float64{40, 30}
	r.headerRow(widths, []string{"Market", "Stocks"})
	for _, ex := range domain.Exchanges {
		r.row(widths, "LR", []string{string(ex), fmt.Sprint(counts[ex])})
	}
	r.pdf.Ln(6)

	r.heading("Constituents")
	widths = []float64{20, 80, 30, 25}
	r.headerRow(widths, []string{"Ticker", "Name", "Market", "Added"})
	for _, c := range r.ds.Constituents.All() {
		r.row(widths, "LLLR", []string{c.Ticker, c.Name, string(c.Exchange), fmt.Sprint(c.YearAdded)})
	}

	if warnings := r.ds.Warnings(); len(warnings) > 0 {
		r.pdf.Ln(6)
		r.pdf.SetFont("Arial", "I", 9)
		r.pdf.SetTextColor(150, 80, 0)
		for _, w := range warnings {
			r.pdf.MultiCell(contentWidth, 4.5, r.tr("Skipped "+w), "", "L", false)
		}
	}
}

func (r *pdfReport) addPerformancePage() {
	r.pdf.AddPage()
	r.heading("Performance")

	widths := []float64{18, 52, 22, 22, 22, 22, 22}
	r.headerRow(widths, []string{
		"Ticker", "Name", "Since", "Close", "Base return",
		fmt.Sprintf("MA %d", r.opts.ShortWindow),
		fmt.Sprintf("MA %d", r.opts.LongWindow),
	})
	for _, s := range Summarize(r.ds, r.opts) {
		r.row(widths, "LLLRRRR", []string{
			s.Ticker,
			s.Name,
			s.First.Format(domain.DateLayout),
			dashboard.FormatPrice(s.LastClose),
			formatReturn(s.BaseReturn),
			dashboard.FormatPrice(s.ShortMA),
			dashboard.FormatPrice(s.LongMA),
		})
	}
}

func (r *pdfReport) addCorrelationPage(m domain.CorrelationMatrix) {
	r.pdf.AddPage()
	r.heading("Correlation of daily changes")

	pairs := RankPairs(m)
	widths := []float64{12, 74, 74, 20}
	r.headerRow(widths, []string{"#", "Stock", "Stock", "R"})
	for i, p := range pairs[:min(r.opts.Top, len(pairs))] {
		r.row(widths, "RLLR", []string{fmt.Sprint(i + 1), p.A, p.B, dashboard.FormatCorrelation(p.R)})
	}
	if len(pairs) > r.opts.Top {
		r.pdf.Ln(6)
		r.heading("Least correlated")
		r.headerRow(widths, []string{"#", "Stock", "Stock", "R"})
		n := 1
		for i := len(pairs) - 1; i >= max(r.opts.Top, len(pairs)-r.opts.Top); i-- {
			p := pairs[i]
			r.row(widths, "RLLR", []string{fmt.Sprint(n), p.A, p.B, dashboard.FormatCorrelation(p.R)})
			n++
		}
	}
}
