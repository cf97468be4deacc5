package stats

import (
	"golang.org/x/text/language"

	"care-attendance/internal/platform/ids"
)

type Service struct {
	ledger RecordSource
	places PlaceLookup
	clock  ids.Clock
	report ReportOptions
}

func NewService(ledger RecordSource, places PlaceLookup, clock ids.Clock, report ReportOptions) *Service {
	if report.Locale == language.Und {
		report.Locale = language.Korean
	}
	return &Service{ledger: ledger, places: places, clock: clock, report: report}
}

func (s *Service) Week() Summary {
	return WeeklyStats(s.ledger.All(), s.places, s.clock.Now())
}

// Month summarizes year/month; zero values mean the current month.
func (s *Service) Month(year, month int) (MonthSummary, error) {
	if year == 0 && month == 0 {
		return MonthlyStats(s.ledger.All(), s.places, s.clock.Now()), nil
	}
	year, month = s.defaultMonth(year, month)
	return MonthTotals(s.ledger.All(), s.places, year, month)
}

func (s *Service) Range(from, to string) (Summary, error) {
	return RangeStats(s.ledger.All(), s.places, from, to)
}

func (s *Service) Calendar(year, month int) (Calendar, error) {
	year, month = s.defaultMonth(year, month)
	now := s.clock.Now()
	return CalendarMonth(s.ledger.All(), year, month, now.Format(DateLayout))
}

func (s *Service) defaultMonth(year, month int) (int, int) {
	now := s.clock.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return year, month
}
