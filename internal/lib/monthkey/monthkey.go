// Package monthkey формирует ключи месяцев журнала требований.
// Ключ всегда вычисляется в UTC, чтобы смена месяца не зависела от
// часового пояса сервера.
package monthkey

import "time"

const layout = "2006-01"

// At возвращает ключ месяца для переданного момента времени.
func At(t time.Time) string {
	return t.UTC().Format(layout)
}

// Current возвращает ключ текущего месяца.
func Current() string {
	return At(time.Now())
}
