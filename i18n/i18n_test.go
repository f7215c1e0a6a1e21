package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_BuiltinOnly(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	assert.Equal(t, "Authors", b.Localize("category.authors", ""))
	assert.Equal(t, "Authors", b.Localize("category.authors", "fr-FR,fr;q=0.9"))
	assert.Equal(t, "no.such.key", b.Localize("no.such.key", "en"))
	assert.Equal(t, []string{"en"}, b.Languages())
}

func TestLocalize_NegotiatesLanguage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ru.json", `{"category.authors": "Авторы"}`)
	writeFile(t, dir, "de.yaml", "category.authors: Autoren\n")
	writeFile(t, dir, "readme.txt", "ignored")

	b, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"de", "en", "ru"}, b.Languages())
	assert.Equal(t, "Авторы", b.Localize("category.authors", "ru-RU,ru;q=0.9,en;q=0.8"))
	assert.Equal(t, "Autoren", b.Localize("category.authors", "de"))
	assert.Equal(t, "Autoren", b.Localize("category.authors", "fr;q=0.9, de;q=0.5"))
	// ключа нет в русском переводе
	assert.Equal(t, "Series", b.Localize("category.series", "ru"))
}

func TestLocalize_FileOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "en.json", `{"category.all": "Everything"}`)

	b, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "Everything", b.Localize("category.all", ""))
	assert.Equal(t, "Authors", b.Localize("category.authors", ""))
}

func TestLoad_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ru.json", `{"category.authors": `)
	writeFile(t, dir, "de.yaml", "category.authors: Autoren\nnested:\n  key: value\n")

	b, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "Authors", b.Localize("category.authors", "ru"))
	assert.Equal(t, "nested", b.Localize("nested", "de"))
}

func TestLocalizef(t *testing.T) {
	b, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "alice's Libraries", b.Localizef("catalog.libraries", "en", "alice"))
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ru.json", `{"category.authors": "Авторы"}`)

	b, err := Load(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Watch(ctx))

	writeFile(t, dir, "ru.json", `{"category.authors": "Писатели"}`)

	assert.Eventually(t, func() bool {
		return b.Localize("category.authors", "ru") == "Писатели"
	}, 5*time.Second, 50*time.Millisecond)
}
