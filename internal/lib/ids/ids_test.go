package ids

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

func TestDay_IgnoresCallerZone(t *testing.T) {
	// 23:30 UTC 14 октября это уже 15 октября по времени портала.
	utc := time.Date(2025, 10, 14, 23, 30, 0, 0, time.UTC)
	vladivostok := time.FixedZone("VLAT", 10*60*60)

	day := Day(utc)
	assert.Equal(t, 15, day.Day())
	assert.Equal(t, DayEpoch(utc), DayEpoch(utc.In(vladivostok)))
	assert.Equal(t, DayEpoch(day), DayEpoch(day.Add(20*time.Hour)))
}

func TestGradeID(t *testing.T) {
	date := time.Date(2025, 10, 15, 9, 0, 0, 0, PortalLocation)
	epoch := DayEpoch(date)

	id := GradeID(date, 1, 3)
	assert.Equal(t, GradeID(date, 1, 3), id)
	assert.Equal(t, formatInts(epoch, 1, 3), id)
	assert.NotEqual(t, GradeID(date, 3, 1), id)
	assert.NotEqual(t, GradeID(date.AddDate(0, 0, 1), 1, 3), id)
}

func TestTaskID(t *testing.T) {
	due := time.Date(2025, 10, 16, 0, 0, 0, 0, PortalLocation)

	assert.Equal(t, TaskID(2, 17, due), TaskID(2, 17, due.Add(5*time.Hour)))
	assert.Equal(t, formatInts(2, 17, DayEpoch(due)), TaskID(2, 17, due))
	assert.NotEqual(t, TaskID(2, 18, due), TaskID(2, 17, due))
}

func TestSubjectKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Русский язык ", "русский_язык"},
		{"Алгебра", "алгебра"},
		{"Основы безопасности жизнедеятельности", "основы_безопасности_жизнедеятельности"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SubjectKey(tt.in))
	}
}

func TestPerformanceID(t *testing.T) {
	assert.Equal(t, "Физика_2", PerformanceID("Физика", models.PeriodSecond))
	assert.Equal(t, "Физика_year", PerformanceID("Физика", models.PeriodYear))
}

func TestTeacherID(t *testing.T) {
	teacher := models.TeacherDTO{LastName: "Иванов", FirstName: "И.", Patronymic: "И."}
	assert.Equal(t, "иванов_и._и.", TeacherID(teacher))
}

func formatInts(a, b, c int64) string {
	return strconv.FormatInt(a, 10) + "-" + strconv.FormatInt(b, 10) + "-" + strconv.FormatInt(c, 10)
}
