package engine

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks удаляет диакритические знаки после канонической декомпозиции.
// runes.Remove не хранит состояния, поэтому один экземпляр можно использовать
// из нескольких горутин.
var stripMarks = sync.OnceValue(func() transform.Transformer {
	return runes.Remove(runes.In(unicode.Mn))
})

// foldString приводит строку к нижнему регистру и убирает диакритику:
// "Émile" -> "emile".
func foldString(s string) string {
	s = norm.NFD.String(strings.ToLower(s))
	folded, _, err := transform.String(stripMarks(), s)
	if err != nil {
		return norm.NFC.String(s)
	}
	return norm.NFC.String(folded)
}

// firstLetterKey ключ первой буквы значения для группировки и фильтрации
// по букве. Для пустой строки возвращает пустую строку.
func firstLetterKey(value string) string {
	r, size := utf8.DecodeRuneInString(value)
	if size == 0 {
		return ""
	}
	return foldString(string(r))
}

// bucketLetter буква группы A-Z или пустая строка, если значение
// начинается не с латинской буквы.
func bucketLetter(value string) string {
	key := strings.ToUpper(firstLetterKey(value))
	if len(key) != 1 || key[0] < 'A' || key[0] > 'Z' {
		return ""
	}
	return key
}
