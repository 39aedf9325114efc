// Package ids выводит стабильные идентификаторы записей из их содержимого.
// Повторный разбор той же страницы даёт те же ID, поэтому upsert в хранилище
// идемпотентен без предварительной проверки существования.
package ids

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// PortalLocation часовой пояс портала (UTC+3). Все даты приводятся к нему,
// чтобы эпоха дня не зависела от локали машины.
var PortalLocation = time.FixedZone("MSK", 3*60*60)

// Day возвращает полночь календарной даты t в поясе портала.
func Day(t time.Time) time.Time {
	local := t.In(PortalLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, PortalLocation)
}

// DayEpoch unix-время полуночи даты t в поясе портала.
func DayEpoch(t time.Time) int64 {
	return Day(t).Unix()
}

// GradeID собирает ID оценки из даты, номера ячейки и номера урока.
func GradeID(date time.Time, markOrdinal, lessonOrdinal int) string {
	return fmt.Sprintf("%d-%d-%d", DayEpoch(date), markOrdinal, lessonOrdinal)
}

// TaskID собирает ID задания из номера урока, предмета и даты сдачи.
func TaskID(lessonOrdinal int, subjectID int64, dueDate time.Time) string {
	return fmt.Sprintf("%d-%d-%d", lessonOrdinal, subjectID, DayEpoch(dueDate))
}

// LessonID собирает ID строки расписания.
func LessonID(date time.Time, ordinal int) string {
	return strconv.FormatInt(DayEpoch(date), 10) + "-" + strconv.Itoa(ordinal)
}

// SubjectKey нормализует название предмета для поиска по имени.
// Суррогатным ID предмета не является.
func SubjectKey(fullName string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(fullName)), " ", "_")
}

// PerformanceID собирает ID строки ведомости.
func PerformanceID(subjectName string, period models.Period) string {
	return subjectName + "_" + string(period)
}

// TeacherID ключ учителя по ФИО.
func TeacherID(t models.TeacherDTO) string {
	return SubjectKey(t.FullName())
}
