package models

import "time"

// Credentials логин и пароль от портала. Принадлежат хранилищу настроек,
// ядро синхронизации их только читает.
type Credentials struct {
	Login    string
	Password string
}

// Session авторизованная кука портала.
type Session struct {
	Cookie     string    `json:"cookie"`
	ObtainedAt time.Time `json:"obtained_at"`
}

// IsZero сообщает, что сессии нет.
func (s Session) IsZero() bool {
	return s.Cookie == ""
}

// Subject предмет. ID назначается хранилищем при первом создании.
type Subject struct {
	ID          int64
	FullName    string
	DisplayName *string
}

// Name возвращает отображаемое имя, если оно задано, иначе полное.
func (s Subject) Name() string {
	if s.DisplayName != nil && *s.DisplayName != "" {
		return *s.DisplayName
	}
	return s.FullName
}

// Grade сохранённая оценка. ID детерминирован, см. ids.GradeID.
type Grade struct {
	ID            string
	Mark          Mark
	TypeOfWork    string
	Date          time.Time
	FetchedAt     time.Time
	SubjectID     int64
	LessonOrdinal int
	MarkOrdinal   int
}

// Task домашнее задание. IsFetched отличает задания с портала от созданных вручную.
type Task struct {
	ID            string
	Title         string
	DueDate       time.Time
	SubjectID     int64
	LessonOrdinal int
	IsFetched     bool
}

// EduPerformance успеваемость по предмету за период.
type EduPerformance struct {
	ID        string
	SubjectID int64
	Marks     []Mark
	FinalMark *Mark
	ExamMark  *Mark
	Period    Period
}

// Lesson сохранённая строка расписания.
type Lesson struct {
	ID          string
	Date        time.Time
	Ordinal     int
	SubjectID   int64
	SubjectName string
	Duration    time.Duration
}

// Teacher учитель с детерминированным ID по ФИО.
type Teacher struct {
	ID         string
	LastName   string
	FirstName  string
	Patronymic string
}
