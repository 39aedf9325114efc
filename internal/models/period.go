package models

import "time"

// Period период ведомости: номер четверти или учебный год.
type Period string

const (
	PeriodFirst  Period = "1"
	PeriodSecond Period = "2"
	PeriodThird  Period = "3"
	PeriodFourth Period = "4"
	PeriodYear   Period = "year"
)

// IsYear сообщает, что период годовая ведомость.
func (p Period) IsYear() bool {
	return p == PeriodYear
}

// TermForDate возвращает четверть, в которую попадает дата.
// Летние месяцы относятся к четвёртой четверти закончившегося года.
func TermForDate(t time.Time) Period {
	switch t.Month() {
	case time.September, time.October:
		return PeriodFirst
	case time.November, time.December:
		return PeriodSecond
	case time.January, time.February, time.March:
		return PeriodThird
	default:
		return PeriodFourth
	}
}
