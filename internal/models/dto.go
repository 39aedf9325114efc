package models

import (
	"sort"
	"strings"
	"time"
)

// ScheduleEntryDTO строка расписания со страницы дня.
type ScheduleEntryDTO struct {
	Ordinal     int       // Номер строки урока на странице
	Date        time.Time // Дата страницы
	SubjectName string    // Название предмета как на портале
}

// GradeDTO одна оценка (или отметка из комментария) со страницы дня.
type GradeDTO struct {
	Mark          Mark
	TypeOfWork    string
	Date          time.Time
	SubjectName   string
	MarkOrdinal   int // Номер ячейки оценки внутри урока
	LessonOrdinal int // Номер строки урока
}

// TaskDTO домашнее задание по предмету.
type TaskDTO struct {
	Title         string
	DueDate       time.Time
	SubjectName   string
	LessonOrdinal int
}

// EduPerformanceDTO строка ведомости успеваемости за период.
type EduPerformanceDTO struct {
	SubjectName string
	TermMarks   []Mark
	FinalMark   *Mark
	ExamMark    *Mark
	Period      Period
}

// TeacherDTO учитель, извлечённый из подсказки к оценке.
type TeacherDTO struct {
	LastName   string
	FirstName  string
	Patronymic string
}

// FullName возвращает ФИО в том виде, как оно записано на портале.
func (t TeacherDTO) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.LastName, t.FirstName, t.Patronymic} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// TeacherSubjects накапливает предметы, которые ведёт каждый учитель.
type TeacherSubjects map[TeacherDTO]map[string]struct{}

// Add связывает учителя с предметом.
func (ts TeacherSubjects) Add(t TeacherDTO, subject string) {
	set, ok := ts[t]
	if !ok {
		set = make(map[string]struct{})
		ts[t] = set
	}
	set[subject] = struct{}{}
}

// Subjects возвращает отсортированный список предметов учителя.
func (ts TeacherSubjects) Subjects(t TeacherDTO) []string {
	set := ts[t]
	res := make([]string, 0, len(set))
	for s := range set {
		res = append(res, s)
	}
	sort.Strings(res)
	return res
}
