package portal

import (
	"net/url"
	"time"

	"github.com/magabrotheeeer/diary-sync/internal/config"
	"github.com/magabrotheeeer/diary-sync/internal/lib/ids"
	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// Page логическая страница портала.
type Page struct {
	Path  string
	Query url.Values
}

// URL возвращает относительный адрес страницы.
func (p Page) URL() *url.URL {
	u := &url.URL{Path: p.Path}
	if len(p.Query) > 0 {
		u.RawQuery = p.Query.Encode()
	}
	return u
}

func (p Page) String() string {
	return p.URL().String()
}

// Pages строит адреса страниц по настройкам портала.
type Pages struct {
	dayPath         string
	performancePath string
}

func NewPages(cfg config.Portal) Pages {
	return Pages{dayPath: cfg.DayPath, performancePath: cfg.PerformancePath}
}

// Day страница дневника за день, дата в поясе портала.
func (p Pages) Day(date time.Time) Page {
	return Page{
		Path:  p.dayPath,
		Query: url.Values{"date": {ids.Day(date).Format("02.01.2006")}},
	}
}

// Performance ведомость успеваемости за четверть или год.
func (p Pages) Performance(period models.Period) Page {
	return Page{
		Path:  p.performancePath,
		Query: url.Values{"period": {string(period)}},
	}
}
