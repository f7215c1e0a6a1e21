package engine

import (
	"regexp"

	"github.com/charmbracelet/log"
)

// Matcher регистронезависимое буквальное совпадение подстроки.
// Matcher, который не удалось собрать, не совпадает ни с чем.
type Matcher struct {
	re *regexp.Regexp
}

// CompileMatcher экранирует все метасимволы в pattern и собирает
// регистронезависимый шаблон. Для пустой строки возвращает nil:
// отсутствующее поле запроса ничего не ограничивает.
func CompileMatcher(pattern string) *Matcher {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(pattern))
	if err != nil {
		// Например, невалидный UTF-8 в строке поиска
		log.Debug("не удалось собрать шаблон поиска", "pattern", pattern, "err", err)
		return &Matcher{}
	}
	return &Matcher{re: re}
}

// MatchString сообщает, содержит ли s искомую строку
func (m *Matcher) MatchString(s string) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(s)
}

// Matchers набор шаблонов для одного запроса
type Matchers struct {
	Search *Matcher
	Name   *Matcher
	Author *Matcher
	Title  *Matcher
}

// CompileQuery собирает шаблоны для всех текстовых полей запроса
func CompileQuery(q Query) Matchers {
	return Matchers{
		Search: CompileMatcher(q.Search),
		Name:   CompileMatcher(q.Name),
		Author: CompileMatcher(q.Author),
		Title:  CompileMatcher(q.Title),
	}
}
