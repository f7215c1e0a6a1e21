// i18n/i18n.go

// Package i18n отвечает за перевод заголовков каталога. Переводы хранятся
// в файлах <язык>.json или <язык>.yaml, ключи плоские ("category.authors").
package i18n

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Fallback язык, используемый, когда подходящего перевода нет
const Fallback = "en"

//go:embed locales/*.json
var builtin embed.FS

type catalog map[string]map[string]string

// Bundle набор переводов с выбором языка по Accept-Language
type Bundle struct {
	dir string

	mu       sync.RWMutex
	messages catalog
	tags     []language.Tag // tags[0] всегда Fallback
	matcher  language.Matcher
}

// Load читает встроенные переводы и файлы из dir. Отсутствующий каталог
// не является ошибкой: используются только встроенные переводы.
func Load(dir string) (*Bundle, error) {
	b := &Bundle{dir: dir}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload перечитывает переводы. При ошибке действующие переводы не меняются.
func (b *Bundle) Reload() error {
	messages, err := loadBuiltin()
	if err != nil {
		return err
	}

	if b.dir != "" {
		if err := loadDir(b.dir, messages); err != nil {
			return err
		}
	}

	tags := supportedTags(messages)

	b.mu.Lock()
	b.messages = messages
	b.tags = tags
	b.matcher = language.NewMatcher(tags)
	b.mu.Unlock()

	log.Debug("i18n: переводы загружены", "languages", len(tags), "dir", b.dir)
	return nil
}

// Languages возвращает коды загруженных языков
func (b *Bundle) Languages() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	codes := make([]string, 0, len(b.messages))
	for code := range b.messages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Localize возвращает перевод key для языка из заголовка Accept-Language.
// Если перевода нет, берется английский, затем сам ключ.
func (b *Bundle) Localize(key, acceptLanguage string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	code := b.negotiate(acceptLanguage)
	if s, ok := b.messages[code][key]; ok {
		return s
	}
	if s, ok := b.messages[Fallback][key]; ok {
		return s
	}
	return key
}

// Localizef форматирует перевод key с аргументами args
func (b *Bundle) Localizef(key, acceptLanguage string, args ...any) string {
	return fmt.Sprintf(b.Localize(key, acceptLanguage), args...)
}

func (b *Bundle) negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return Fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return Fallback
	}
	return baseCode(b.tags[idx])
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

func supportedTags(messages catalog) []language.Tag {
	tags := []language.Tag{language.MustParse(Fallback)}
	codes := make([]string, 0, len(messages))
	for code := range messages {
		if code != Fallback {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			log.Warn("i18n: неизвестный код языка", "code", code)
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func loadBuiltin() (catalog, error) {
	messages := make(catalog)
	entries, err := builtin.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read builtin locales: %w", err)
	}
	for _, e := range entries {
		data, err := builtin.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read builtin locale %s: %w", e.Name(), err)
		}
		code, _ := localeCode(e.Name())
		if err := merge(messages, code, data); err != nil {
			return nil, fmt.Errorf("builtin locale %s: %w", e.Name(), err)
		}
	}
	return messages, nil
}

func loadDir(dir string, messages catalog) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		log.Warn("i18n: каталог переводов не найден", "dir", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read languages dir %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		code, ok := localeCode(e.Name())
		if !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("i18n: не удалось прочитать файл", "path", path, "err", err)
			continue
		}
		if err := merge(messages, code, data); err != nil {
			log.Warn("i18n: некорректный файл перевода", "path", path, "err", err)
		}
	}
	return nil
}

// localeCode возвращает код языка по имени файла перевода
func localeCode(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".json", ".yaml", ".yml":
		return strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name))), true
	}
	return "", false
}

// merge разбирает файл перевода (JSON является подмножеством YAML) и
// добавляет строковые значения к переводам языка code.
func merge(messages catalog, code string, data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	m := messages[code]
	if m == nil {
		m = make(map[string]string, len(raw))
		messages[code] = m
	}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			m[k] = s
		}
	}
	return nil
}
