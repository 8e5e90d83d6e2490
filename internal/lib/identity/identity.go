// Package identity нормализует внешние идентификаторы подписчиков.
// Идентификаторы приходят из webhook-метаданных, query-параметров и тел
// запросов; без единой нормализации один и тот же пользователь распадается
// на несколько записей.
package identity

import (
	"strings"
	"unicode"
)

// Normalize обрезает пробельные и управляющие символы по краям
// идентификатора. Пустой результат означает отсутствие идентификатора.
func Normalize(raw string) string {
	return strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}
