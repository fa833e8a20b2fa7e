package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LilVoxy/coursework_etl/utils"
	"github.com/golang/snappy"
)

// Archiver отвечает за архивирование и удаление временных снапшотов данных
type Archiver struct {
	dir    string // директория архива; пустая строка - архивирование отключено
	logger *utils.ETLLogger
}

// NewArchiver создает новый экземпляр Archiver
func NewArchiver(dir string, logger *utils.ETLLogger) *Archiver {
	return &Archiver{
		dir:    dir,
		logger: logger,
	}
}

// Archive сжимает файл и сохраняет его в директорию архива.
// Имя архива содержит отметку времени, чтобы запуски не затирали друг друга.
func (a *Archiver) Archive(path string) (string, error) {
	if a.dir == "" {
		return "", fmt.Errorf("директория архива не настроена")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("ошибка при чтении файла %s: %w", path, err)
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("ошибка при создании директории архива: %w", err)
	}

	compressed := snappy.Encode(nil, data)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	archivePath := filepath.Join(a.dir, fmt.Sprintf("%s_%s.snappy", base, time.Now().Format("20060102_150405")))

	if err := os.WriteFile(archivePath, compressed, 0644); err != nil {
		return "", fmt.Errorf("ошибка при записи архива %s: %w", archivePath, err)
	}

	a.logger.Info("Снапшот %s заархивирован в %s (%d -> %d байт)", path, archivePath, len(data), len(compressed))
	return archivePath, nil
}

// Restore распаковывает архив в указанный файл
func (a *Archiver) Restore(archivePath, targetPath string) error {
	compressed, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("ошибка при чтении архива %s: %w", archivePath, err)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return fmt.Errorf("ошибка при распаковке архива %s: %w", archivePath, err)
	}

	if err := os.WriteFile(targetPath, data, 0644); err != nil {
		return fmt.Errorf("ошибка при записи файла %s: %w", targetPath, err)
	}

	return nil
}

// Cleanup удаляет временные снапшоты. Ошибки по отдельным файлам логируются и
// не прерывают очистку: шаг должен отработать при любом исходе запуска.
// При настроенной директории архива файл перед удалением архивируется.
func (a *Archiver) Cleanup(paths ...string) {
	a.logger.Info("Очистка временных файлов")

	for _, path := range paths {
		if path == "" {
			continue
		}

		if a.dir != "" {
			if _, err := a.Archive(path); err != nil {
				a.logger.Warn("Не удалось заархивировать %s: %v", path, err)
			}
		}

		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				a.logger.Warn("Не удалось удалить файл %s: %v", path, err)
			}
			continue
		}

		a.logger.Info("Удален временный файл: %s", path)
	}
}
