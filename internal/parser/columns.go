// Package parser разбирает страницы портала в DTO.
// Все разборщики читают одну и ту же табличную вёрстку: строка на урок,
// фиксированный номер колонки на каждое поле.
package parser

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrMalformedPage означает, что на странице нет ожидаемой таблицы.
var ErrMalformedPage = errors.New("malformed page")

// Column номер колонки таблицы дневника.
type Column int

const (
	ColumnOrdinal Column = iota
	ColumnSubject
	ColumnTask
	ColumnComment
	ColumnGrade
)

const (
	journalRows     = "table.journal > tbody > tr"
	performanceRows = "table.performance > tbody > tr"
	markCell        = "span.mark"
	totalRowTitle   = "ИТОГО"
)

// rows возвращает строки таблицы или ErrMalformedPage, если таблицы нет.
func rows(doc *goquery.Document, selector string) (*goquery.Selection, error) {
	table := strings.SplitN(selector, " > ", 2)[0]
	if doc.Find(table).Length() == 0 {
		return nil, ErrMalformedPage
	}
	return doc.Find(selector), nil
}

func cell(row *goquery.Selection, col Column) *goquery.Selection {
	return row.Children().Filter("td").Eq(int(col))
}

func cellText(row *goquery.Selection, col Column) string {
	return clean(cell(row, col).Text())
}

// clean схлопывает пробелы, включая неразрывные.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
