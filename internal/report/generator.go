package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/signintech/gopdf"

	"github.com/lims/lims/internal/domain/billing"
	"github.com/lims/lims/internal/domain/patient"
	"github.com/lims/lims/internal/domain/results"
)

// fallbackFonts are tried when the configured font is missing.
var fallbackFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
}

// Generator renders lab reports and invoices as PDF.
type Generator struct {
	labName    string
	labAddress string
	fontPath   string
	now        func() time.Time
}

func NewGenerator(labName, labAddress, fontPath string) *Generator {
	return &Generator{
		labName:    labName,
		labAddress: labAddress,
		fontPath:   fontPath,
		now:        time.Now,
	}
}

func (g *Generator) newPDF() (*gopdf.GoPdf, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	paths := fallbackFonts
	if g.fontPath != "" {
		paths = append([]string{g.fontPath}, fallbackFonts...)
	}
	var fontErr error
	for _, path := range paths {
		if err := pdf.AddTTFFont("body", path); err == nil {
			return pdf, nil
		} else {
			fontErr = err
		}
	}
	return nil, fmt.Errorf("no usable report font: %w", fontErr)
}

// reportRow is one printable line of a lab report.
type reportRow struct {
	heading bool
	name    string
	value   string
	unit    string
	rng     string
	flagged bool
}

// labReportRows flattens saved results into printable rows, tests sorted by
// key for a stable page order, sub-parameters indented under their parent.
func labReportRows(saved map[string]results.SavedTest) []reportRow {
	keys := make([]string, 0, len(saved))
	for k := range saved {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows []reportRow
	for _, k := range keys {
		st := saved[k]
		rows = append(rows, reportRow{heading: true, name: displayName(k)})
		for i := range st.Parameters {
			rows = append(rows, parameterRows("", &st.Parameters[i])...)
		}
	}
	return rows
}

func parameterRows(indent string, sp *results.SavedParameter) []reportRow {
	row := reportRow{
		name:    indent + sp.Name,
		value:   sp.ValueString(),
		unit:    sp.Unit,
		rng:     sp.NormalRange,
		flagged: savedOutOfRange(sp),
	}
	rows := []reportRow{row}
	for i := range sp.SubParameters {
		rows = append(rows, parameterRows(indent+"  ", &sp.SubParameters[i])...)
	}
	return rows
}

func savedOutOfRange(sp *results.SavedParameter) bool {
	p := results.ResolvedParameterValue{Value: sp.ValueString(), NormalRange: sp.NormalRange}
	return p.OutOfRange()
}

// displayName undoes the key mangling far enough for a page heading.
func displayName(key string) string {
	out := []rune(key)
	title := true
	for i, r := range out {
		if r == '_' {
			out[i] = ' '
			title = true
			continue
		}
		if title && r >= 'a' && r <= 'z' {
			out[i] = r - 'a' + 'A'
		}
		title = false
	}
	return string(out)
}

// BuildLabReport renders the saved results of a registration.
func (g *Generator) BuildLabReport(pat *patient.Patient, saved map[string]results.SavedTest) ([]byte, error) {
	pdf, err := g.newPDF()
	if err != nil {
		return nil, err
	}
	if err := g.header(pdf); err != nil {
		return nil, err
	}

	if err := pdf.SetFont("body", "", 11); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Patient: %s (%s)", pat.FullName(), pat.MRN))
	pdf.Br(14)
	pdf.Cell(nil, fmt.Sprintf("Age/Gender: %d %s / %s", pat.Age, pat.AgeUnit, pat.Gender))
	pdf.Br(14)
	pdf.Cell(nil, "Reported: "+g.now().Format("02 Jan 2006 15:04"))
	pdf.Br(22)

	for _, row := range labReportRows(saved) {
		if row.heading {
			if err := pdf.SetFont("body", "", 13); err != nil {
				return nil, err
			}
			pdf.Cell(nil, row.name)
			pdf.Br(18)
			continue
		}
		if err := pdf.SetFont("body", "", 10); err != nil {
			return nil, err
		}
		pdf.SetX(40)
		pdf.Cell(nil, row.name)
		pdf.SetX(240)
		v := row.value
		if row.flagged {
			v += " *"
		}
		pdf.Cell(nil, v)
		pdf.SetX(340)
		pdf.Cell(nil, row.unit)
		pdf.SetX(420)
		pdf.Cell(nil, row.rng)
		pdf.Br(14)
		if pdf.GetY() > 780 {
			pdf.AddPage()
		}
	}

	pdf.Br(16)
	if err := pdf.SetFont("body", "", 9); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "* outside reference range")

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildInvoice renders an invoice with its item lines and payment history.
func (g *Generator) BuildInvoice(inv *billing.Invoice, pat *patient.Patient) ([]byte, error) {
	pdf, err := g.newPDF()
	if err != nil {
		return nil, err
	}
	if err := g.header(pdf); err != nil {
		return nil, err
	}

	if err := pdf.SetFont("body", "", 11); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Invoice %s (%s)", shortID(inv.ID.String()), inv.Kind))
	pdf.Br(14)
	pdf.Cell(nil, fmt.Sprintf("Patient: %s (%s)", pat.FullName(), pat.MRN))
	pdf.Br(14)
	pdf.Cell(nil, "Date: "+inv.CreatedAt.Format("02 Jan 2006"))
	pdf.Br(22)

	if err := pdf.SetFont("body", "", 10); err != nil {
		return nil, err
	}
	for _, it := range inv.Items {
		pdf.SetX(40)
		pdf.Cell(nil, it.Description)
		pdf.SetX(440)
		pdf.Cell(nil, amount(it.Amount))
		pdf.Br(14)
	}
	pdf.Br(8)
	for _, line := range []struct {
		label string
		v     float64
	}{
		{"Total", inv.TotalAmount},
		{"Discount", inv.Discount},
		{"Paid", inv.AmountPaid},
		{"Balance", inv.Balance()},
	} {
		pdf.SetX(340)
		pdf.Cell(nil, line.label)
		pdf.SetX(440)
		pdf.Cell(nil, amount(line.v))
		pdf.Br(14)
	}

	if len(inv.Payments) > 0 {
		pdf.Br(10)
		if err := pdf.SetFont("body", "", 12); err != nil {
			return nil, err
		}
		pdf.Cell(nil, "Payments")
		pdf.Br(16)
		if err := pdf.SetFont("body", "", 10); err != nil {
			return nil, err
		}
		for _, p := range inv.Payments {
			pdf.SetX(40)
			pdf.Cell(nil, p.PaidAt.Format("02 Jan 2006 15:04"))
			pdf.SetX(240)
			pdf.Cell(nil, p.Mode)
			pdf.SetX(440)
			pdf.Cell(nil, amount(p.Amount))
			pdf.Br(14)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) header(pdf *gopdf.GoPdf) error {
	if err := pdf.SetFont("body", "", 18); err != nil {
		return err
	}
	pdf.Cell(nil, g.labName)
	pdf.Br(20)
	if g.labAddress != "" {
		if err := pdf.SetFont("body", "", 10); err != nil {
			return err
		}
		pdf.Cell(nil, g.labAddress)
		pdf.Br(14)
	}
	pdf.Br(8)
	return nil
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
