package models

import (
	"fmt"
)

// StorageError представляет ошибку файловой системы при работе со снапшотами данных
type StorageError struct {
	Op   string // операция: mkdir, read, write
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ошибка файловой системы (%s) для %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError представляет ошибку отсутствия входного файла
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("входной файл не найден: %s", e.Path)
}

// EmptyDataError представляет ошибку отсутствия данных для обработки
type EmptyDataError struct {
	Path   string
	Reason string
}

func (e *EmptyDataError) Error() string {
	return fmt.Sprintf("нет данных для обработки в %s: %s", e.Path, e.Reason)
}

// TransformError представляет ошибку на этапе трансформации данных
type TransformError struct {
	Stage string // этап: чтение, очистка, агрегация, запись
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("ошибка трансформации на этапе «%s»: %v", e.Stage, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// AuthError представляет ошибку аутентификации или отсутствия доступа к хранилищу
type AuthError struct {
	ProjectID string
	Err       error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("нет доступа к проекту %s: %v", e.ProjectID, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// WarehouseError представляет ошибку облачного хранилища при загрузке или проверке данных
type WarehouseError struct {
	Op    string // операция: load, query, metadata
	Table string
	Hint  string // подсказка для оператора (например, про права доступа)
	Err   error
}

func (e *WarehouseError) Error() string {
	msg := fmt.Sprintf("ошибка хранилища (%s) для таблицы %s: %v", e.Op, e.Table, e.Err)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *WarehouseError) Unwrap() error {
	return e.Err
}
