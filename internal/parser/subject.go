package parser

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ParseSubjectNames собирает список предметов из первой колонки ведомости
// без повторов, в порядке появления.
func ParseSubjectNames(doc *goquery.Document) ([]string, error) {
	const op = "parser.ParseSubjectNames"

	sel, err := rows(doc, performanceRows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seen := make(map[string]struct{})
	var names []string
	sel.Each(func(_ int, row *goquery.Selection) {
		name := clean(row.Children().Filter("td").First().Text())
		if skipSubject(name) {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	})
	return names, nil
}
