// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"absopds/abs"
	"absopds/config"
	"absopds/engine"
	"absopds/i18n"
	"absopds/opds"
)

const purgeInterval = 10 * time.Minute

func main() {
	rootPath, err := os.Getwd()
	if err != nil {
		log.Fatal("Не удалось определить рабочий каталог", "err", err)
	}

	logFile := setupLogging(rootPath)
	if logFile != nil {
		defer logFile.Close()
	}
	log.Info("Каталог приложения", "path", rootPath)

	config.LoadEnvFile(filepath.Join(rootPath, ".env"))

	cfg, err := config.LoadConfig(filepath.Join(rootPath, "absopds.conf"))
	if err != nil {
		log.Error("Ошибка загрузки конфигурации", "err", err)
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()
	cfg.ParseUsers()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Ошибка валидации конфигурации", "err", err)
	}
	config.SetGlobalConfig(cfg)

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("Используемая конфигурация:\n" + cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := abs.NewTokenCache(cfg.TokenCacheDuration())
	client := abs.NewClient(cfg.ABSURL, tokens)

	var src opds.Source = client
	var cached *abs.CachedSource
	if cfg.ItemsCacheTTL > 0 {
		db, err := openCacheDB(rootPath)
		if err != nil {
			log.Error("Кэш записей отключен", "err", err)
		} else {
			defer db.Close()
			cached = abs.NewCachedSource(client, db, cfg.ItemsCacheDuration())
			src = cached
		}
	}

	go runPurge(ctx, tokens, cached)

	languagesDir := cfg.LanguagesDir
	if !filepath.IsAbs(languagesDir) {
		languagesDir = filepath.Join(rootPath, languagesDir)
	}
	bundle, err := i18n.Load(languagesDir)
	if err != nil {
		log.Fatal("Ошибка загрузки переводов", "err", err)
	}
	if err := bundle.Watch(ctx); err != nil {
		log.Warn("Изменения переводов не отслеживаются", "err", err)
	}
	log.Info("Языки каталога", "languages", bundle.Languages())

	eng := engine.New(engine.Options{
		PageSize:     cfg.PageSize,
		Threshold:    cfg.ParallelThreshold,
		Workers:      cfg.ParallelWorkers,
		ShowNonEbook: cfg.ShowAudiobooks,
		Bucketing:    cfg.ShowCharCards,
	})

	base := opds.NewBaseHandler(src, eng, cfg, bundle)
	handlers := opds.NewHandlers(base, opds.NewAuthenticator(client, cfg))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           opds.NewRouter(ctx, handlers, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			log.Info("Получен сигнал завершения", "signal", sig)
		case <-ctx.Done():
			return
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при остановке HTTP-сервера", "err", err)
			server.Close()
		}
	}()

	log.Info("OPDS сервер запущен", "addr", "http://0.0.0.0"+server.Addr, "abs", cfg.ABSURL)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Ошибка HTTP-сервера", "err", err)
	}

	cancel()
	log.Info("Приложение завершено.")
}

// setupLogging переименовывает прошлый журнал в .old и направляет вывод
// в stdout и новый файл absopds.log
func setupLogging(rootPath string) *os.File {
	logFilePath := filepath.Join(rootPath, "absopds.log")
	logFileOldPath := logFilePath + ".old"

	if _, err := os.Stat(logFilePath); err == nil {
		if err := os.Rename(logFilePath, logFileOldPath); err != nil {
			fmt.Fprintf(os.Stderr, "Не удалось переименовать старый лог-файл: %v\n", err)
		}
	} else if !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Ошибка при проверке лог-файла: %v\n", err)
	}

	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006/01/02 15:04:05.000",
	}

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось открыть файл лога %s: %v\n", logFilePath, err)
		log.SetDefault(log.NewWithOptions(os.Stdout, opts))
		return nil
	}

	log.SetDefault(log.NewWithOptions(io.MultiWriter(os.Stdout, logFile), opts))
	return logFile
}

// runPurge периодически удаляет просроченные токены и записи кэша
func runPurge(ctx context.Context, tokens *abs.TokenCache, cached *abs.CachedSource) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := tokens.Purge()
			if cached != nil {
				n, err := cached.Purge(ctx)
				if err != nil {
					log.Warn("Ошибка очистки кэша записей", "err", err)
				}
				log.Debug("Очистка кэшей", "tokens", removed, "items", n)
				continue
			}
			log.Debug("Очистка кэшей", "tokens", removed)
		}
	}
}
