package diarysync

import (
	"context"

	"github.com/magabrotheeeer/diary-sync/internal/config"
	"github.com/magabrotheeeer/diary-sync/internal/jobs"
	"github.com/magabrotheeeer/diary-sync/internal/reconciler"
	"github.com/magabrotheeeer/diary-sync/internal/services/journal"
	"github.com/magabrotheeeer/diary-sync/internal/services/subjects"
)

type ScheduleSyncer interface {
	Sync(ctx context.Context) (reconciler.Diff, error)
}

type SubjectsSyncer interface {
	Sync(ctx context.Context) (subjects.Result, error)
}

type JournalSyncer interface {
	Sync(ctx context.Context) (journal.Result, error)
}

type VersionChecker interface {
	Check(ctx context.Context) (bool, error)
}

// Services сервисы, которые запускаются как фоновые задачи.
type Services struct {
	Schedule   ScheduleSyncer
	Subjects   SubjectsSyncer
	Journal    JournalSyncer
	AppVersion VersionChecker
}

// Families описывает семейства задач приложения.
func Families(cfg config.Jobs, s Services) []jobs.Family {
	return []jobs.Family{
		{
			Name:       jobs.FamilyAppVersion,
			Policy:     jobs.KeepExisting,
			Budget:     cfg.AppVersionTimeout,
			Interval:   cfg.AppVersionInterval,
			RunOnStart: true,
			Run: func(ctx context.Context) error {
				_, err := s.AppVersion.Check(ctx)
				return err
			},
		},
		{
			Name:       jobs.FamilySubjects,
			Policy:     jobs.ReplaceExisting,
			Interval:   cfg.SubjectsInterval,
			RunOnStart: true,
			Run: func(ctx context.Context) error {
				_, err := s.Subjects.Sync(ctx)
				return err
			},
		},
		{
			Name:     jobs.FamilySchedule,
			Policy:   jobs.ReplaceExisting,
			Interval: cfg.ScheduleInterval,
			Run: func(ctx context.Context) error {
				_, err := s.Schedule.Sync(ctx)
				return err
			},
		},
		{
			Name:     jobs.FamilyTasksGrades,
			Policy:   jobs.ReplaceExisting,
			Budget:   cfg.TasksGradesTimeout,
			Interval: cfg.TasksGradesInterval,
			Run: func(ctx context.Context) error {
				_, err := s.Journal.Sync(ctx)
				return err
			},
		},
	}
}
