// Package export renders stored delivery records into the two spreadsheet
// views: a flat log of every submission and a day-grouped weekly
// reconciliation.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/00greena/PODagent/internal/entity"
	"github.com/00greena/PODagent/internal/timeutil"
)

const dateDisplay = "02/01/2006"

// Weekday buckets of the reconciliation summary. Weekend records stay out of
// the named buckets but still count in the TOTAL row and the all-entries
// sheet, matching the paper process this replaces.
var summaryDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildFullExport renders one sheet, one row per record, in the order given
// (callers pass newest first).
func (s *Service) BuildFullExport(records []*entity.DeliveryRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "POD Entries"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Time In", "Time Out", "Delivery Address", "Reference Number", "Week Number", "Year"}
	if err := writeRow(f, sheet, 1, toAny(headers)); err != nil {
		return nil, err
	}

	for i, r := range records {
		row := []any{
			r.CreatedAt.Format(dateDisplay),
			r.TimeIn,
			r.TimeOut,
			strOrEmpty(r.DeliveryAddress),
			strOrEmpty(r.ReferenceNumber),
			r.WeekNumber,
			r.Year,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheet, "A", "C", 12)
	_ = f.SetColWidth(sheet, "D", "D", 42)
	_ = f.SetColWidth(sheet, "E", "E", 20)

	s.logger.Info("export.full.ok", "rows", len(records))
	return f, nil
}

// BuildWeeklyReconciliation renders the weekly workbook: a Monday-Friday
// summary with a trailing totals row, one detail sheet per non-empty
// weekday, and an all-entries sheet covering the whole week.
func (s *Service) BuildWeeklyReconciliation(records []*entity.DeliveryRecord, weekNumber, year int) (*excelize.File, error) {
	week := filterWeek(records, weekNumber, year)
	buckets := bucketByDay(week)

	f := excelize.NewFile()
	const summarySheet = "Weekly Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	summaryHeaders := []string{"Day", "Number of Deliveries", "Total Hours", "First Time In", "Last Time Out"}
	if err := writeRow(f, summarySheet, 1, toAny(summaryHeaders)); err != nil {
		return nil, err
	}

	var weekdayHours float64
	for i, day := range summaryDays {
		sum := summarize(day, buckets[day])
		weekdayHours += sum.TotalHours
		row := []any{
			sum.Day,
			sum.Deliveries,
			fmt.Sprintf("%.2f", sum.TotalHours),
			dashIfEmpty(sum.FirstTimeIn),
			dashIfEmpty(sum.LastTimeOut),
		}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return nil, err
		}
	}
	totals := []any{"TOTAL", len(week), fmt.Sprintf("%.2f", weekdayHours), "", ""}
	if err := writeRow(f, summarySheet, len(summaryDays)+2, totals); err != nil {
		return nil, err
	}

	detailHeaders := []string{"Date", "Time In", "Time Out", "Hours", "Delivery Address", "Reference Number"}
	for _, day := range summaryDays {
		entries := buckets[day]
		if len(entries) == 0 {
			continue
		}
		if _, err := f.NewSheet(day); err != nil {
			return nil, err
		}
		if err := writeRow(f, day, 1, toAny(detailHeaders)); err != nil {
			return nil, err
		}
		for i, r := range entries {
			row := []any{
				r.CreatedAt.Format(dateDisplay),
				r.TimeIn,
				r.TimeOut,
				fmt.Sprintf("%.2f", recordHours(r)),
				strOrEmpty(r.DeliveryAddress),
				strOrEmpty(r.ReferenceNumber),
			}
			if err := writeRow(f, day, i+2, row); err != nil {
				return nil, err
			}
		}
	}

	const allSheet = "All Entries"
	if _, err := f.NewSheet(allSheet); err != nil {
		return nil, err
	}
	allHeaders := []string{"Date", "Day", "Time In", "Time Out", "Hours", "Delivery Address", "Reference Number"}
	if err := writeRow(f, allSheet, 1, toAny(allHeaders)); err != nil {
		return nil, err
	}
	for i, r := range week {
		row := []any{
			r.CreatedAt.Format(dateDisplay),
			r.CreatedAt.Weekday().String(),
			r.TimeIn,
			r.TimeOut,
			fmt.Sprintf("%.2f", recordHours(r)),
			strOrEmpty(r.DeliveryAddress),
			strOrEmpty(r.ReferenceNumber),
		}
		if err := writeRow(f, allSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	s.logger.Info("export.weekly.ok",
		"week_number", weekNumber,
		"year", year,
		"rows", len(week),
	)
	return f, nil
}

// WeekSummaries computes the Monday-Friday summary rows without rendering a
// workbook. Exposed for callers that only need the numbers.
func WeekSummaries(records []*entity.DeliveryRecord, weekNumber, year int) []entity.WeeklySummary {
	buckets := bucketByDay(filterWeek(records, weekNumber, year))
	out := make([]entity.WeeklySummary, 0, len(summaryDays))
	for _, day := range summaryDays {
		out = append(out, summarize(day, buckets[day]))
	}
	return out
}

func filterWeek(records []*entity.DeliveryRecord, weekNumber, year int) []*entity.DeliveryRecord {
	var out []*entity.DeliveryRecord
	for _, r := range records {
		if r.WeekNumber == weekNumber && r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

func bucketByDay(records []*entity.DeliveryRecord) map[string][]*entity.DeliveryRecord {
	buckets := make(map[string][]*entity.DeliveryRecord, len(summaryDays))
	for _, r := range records {
		day := r.CreatedAt.Weekday().String()
		buckets[day] = append(buckets[day], r)
	}
	return buckets
}

func summarize(day string, entries []*entity.DeliveryRecord) entity.WeeklySummary {
	sum := entity.WeeklySummary{Day: day, Deliveries: len(entries)}
	for _, r := range entries {
		sum.TotalHours += recordHours(r)
	}
	if len(entries) > 0 {
		sum.FirstTimeIn = entries[0].TimeIn
		sum.LastTimeOut = entries[len(entries)-1].TimeOut
	}
	return sum
}

// recordHours tolerates malformed stored times by treating them as zero;
// validation keeps them out of new records but exports must not fail on
// historic data.
func recordHours(r *entity.DeliveryRecord) float64 {
	h, err := timeutil.ElapsedHours(r.TimeIn, r.TimeOut)
	if err != nil {
		return 0
	}
	return h
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FullExportFilename embeds the given date: pod-entries-2006-01-02.xlsx.
func FullExportFilename(now time.Time) string {
	return fmt.Sprintf("pod-entries-%s.xlsx", now.Format("2006-01-02"))
}

// WeeklyFilename embeds the week and year.
func WeeklyFilename(weekNumber, year int) string {
	return fmt.Sprintf("weekly-reconciliation-week%d-%d.xlsx", weekNumber, year)
}
