package stats

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type ReportOptions struct {
	Locale   language.Tag
	Currency string // suffix such as "원"; empty prints bare numbers
}

func (o ReportOptions) money(p *message.Printer, v int64) string {
	if o.Currency == "" {
		return p.Sprintf("%d", v)
	}
	return p.Sprintf("%d%s", v, o.Currency)
}

// MonthlyReportText renders a month summary as plain text with
// locale-grouped amounts.
func (s *Service) MonthlyReportText(year, month int) (string, error) {
	ms, err := s.Month(year, month)
	if err != nil {
		return "", err
	}
	p := message.NewPrinter(s.report.Locale)

	var b strings.Builder
	fmt.Fprintf(&b, "Attendance report %04d-%02d (%s ~ %s)\n", ms.Year, ms.Month, ms.StartDate, ms.EndDate)
	b.WriteString(strings.Repeat("=", 48) + "\n")
	b.WriteString(p.Sprintf("Days worked : %d\n", ms.TotalDays))
	b.WriteString(p.Sprintf("Visits      : %d\n", ms.RecordCount))
	b.WriteString(p.Sprintf("Hours       : %.1f\n", ms.TotalHours))
	b.WriteString("Total pay   : " + s.report.money(p, ms.TotalPay) + "\n")

	if len(ms.ByPlace) > 0 {
		b.WriteString("\nBy place\n")
		for _, pt := range ms.ByPlace {
			b.WriteString(p.Sprintf("- %s: %d days, %.1f h, ", pt.Place.Name, pt.Days, pt.Hours))
			b.WriteString(s.report.money(p, pt.Pay) + "\n")
		}
	}
	if len(ms.ByDay) > 0 {
		b.WriteString("\nBy day\n")
		for _, d := range ms.ByDay {
			b.WriteString(p.Sprintf("%s  %d visit(s)  %.1f h  ", d.Date, d.Visits, d.Hours))
			b.WriteString(s.report.money(p, d.Pay) + "\n")
		}
	}
	return b.String(), nil
}

// MonthlyReportXLSX builds a workbook with Summary, By place and By day sheets.
func (s *Service) MonthlyReportXLSX(year, month int) ([]byte, error) {
	ms, err := s.Month(year, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const (
		summarySheet = "Summary"
		placeSheet   = "By place"
		daySheet     = "By day"
	)
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	summaryRows := [][]any{
		{"Period", fmt.Sprintf("%04d-%02d", ms.Year, ms.Month)},
		{"From", ms.StartDate},
		{"To", ms.EndDate},
		{"Days worked", ms.TotalDays},
		{"Visits", ms.RecordCount},
		{"Hours", ms.TotalHours},
		{"Total pay", ms.TotalPay},
	}
	if err := writeRows(f, summarySheet, summaryRows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(placeSheet); err != nil {
		return nil, err
	}
	placeRows := [][]any{{"Place", "Hourly rate", "Days", "Visits", "Hours", "Pay"}}
	for _, pt := range ms.ByPlace {
		placeRows = append(placeRows, []any{pt.Place.Name, pt.Place.HourlyRate, pt.Days, pt.Visits, pt.Hours, pt.Pay})
	}
	if err := writeRows(f, placeSheet, placeRows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(daySheet); err != nil {
		return nil, err
	}
	dayRows := [][]any{{"Date", "Visits", "Hours", "Pay"}}
	for _, d := range ms.ByDay {
		dayRows = append(dayRows, []any{d.Date, d.Visits, d.Hours, d.Pay})
	}
	if err := writeRows(f, daySheet, dayRows); err != nil {
		return nil, err
	}

	for _, sheet := range []string{summarySheet, placeSheet, daySheet} {
		if err := f.SetColWidth(sheet, "A", "A", 18); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
