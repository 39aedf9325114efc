package reconciler

import (
	"slices"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/lib/ids"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// DayDiff изменение расписания за день.
type DayDiff struct {
	Date  time.Time `json:"date"`
	IsNew bool      `json:"is_new"`
}

// Diff изменения расписания по дням, ключ DayKey.
type Diff map[string]DayDiff

// DayKey ключ дня в поясе портала.
func DayKey(t time.Time) string {
	return ids.Day(t).Format(time.DateOnly)
}

// GroupByDay раскладывает уроки по дням.
func GroupByDay(lessons []models.Lesson) map[string][]models.Lesson {
	out := make(map[string][]models.Lesson)
	for _, l := range lessons {
		k := DayKey(l.Date)
		out[k] = append(out[k], l)
	}
	return out
}

// ComputeScheduleDiff сравнивает свежее и сохранённое расписание по каждому дню окна.
// День без сохранённых уроков, но со свежими, новый. День, где наборы уроков
// расходятся, изменён. Совпадающие дни в результат не попадают.
func ComputeScheduleDiff(window []time.Time, fetched, persisted map[string][]models.Lesson) Diff {
	diff := make(Diff)
	for _, day := range window {
		key := DayKey(day)
		f, p := fetched[key], persisted[key]
		switch {
		case len(p) == 0 && len(f) == 0:
		case len(p) == 0:
			diff[key] = DayDiff{Date: ids.Day(day), IsNew: true}
		case !sameLessons(f, p):
			diff[key] = DayDiff{Date: ids.Day(day), IsNew: false}
		}
	}
	return diff
}

type lessonKey struct {
	ordinal int
	subject string
}

func sameLessons(a, b []models.Lesson) bool {
	if len(a) != len(b) {
		return false
	}
	ka, kb := lessonKeys(a), lessonKeys(b)
	return slices.Equal(ka, kb)
}

func lessonKeys(lessons []models.Lesson) []lessonKey {
	keys := make([]lessonKey, 0, len(lessons))
	for _, l := range lessons {
		keys = append(keys, lessonKey{ordinal: l.Ordinal, subject: l.SubjectName})
	}
	slices.SortFunc(keys, func(x, y lessonKey) int {
		if x.ordinal != y.ordinal {
			return x.ordinal - y.ordinal
		}
		switch {
		case x.subject < y.subject:
			return -1
		case x.subject > y.subject:
			return 1
		}
		return 0
	})
	return keys
}

// Window дни от start на days вперёд включительно.
func Window(start time.Time, days int) []time.Time {
	first := ids.Day(start)
	out := make([]time.Time, 0, days+1)
	for i := 0; i <= days; i++ {
		out = append(out, first.AddDate(0, 0, i))
	}
	return out
}
