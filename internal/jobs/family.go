package jobs

import (
	"context"
	"time"
)

// Названия семейств задач.
const (
	FamilyAppVersion  = "app-version-check"
	FamilySchedule    = "schedule-sync"
	FamilySubjects    = "subjects-sync"
	FamilyTasksGrades = "tasks-grades-sync"
)

// Policy определяет, что делать с новым запуском, если предыдущий ещё идёт.
type Policy int

const (
	// ReplaceExisting отменяет текущий запуск и дожидается его завершения.
	ReplaceExisting Policy = iota
	// KeepExisting оставляет текущий запуск, новый отклоняется.
	KeepExisting
)

func (p Policy) String() string {
	if p == KeepExisting {
		return "keep"
	}
	return "replace"
}

// Family описывает семейство задач.
type Family struct {
	Name       string
	Policy     Policy
	Budget     time.Duration // 0 - без ограничения
	Interval   time.Duration // 0 - только по запросу
	RunOnStart bool
	Run        func(ctx context.Context) error
}
