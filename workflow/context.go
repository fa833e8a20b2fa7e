package workflow

import (
	"fmt"
	"sync"
)

// Context хранит значения, которые задачи передают друг другу во время запуска.
// Значения адресуются парой (идентификатор задачи, ключ) - задача-получатель
// явно указывает, чей результат она забирает.
type Context struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewContext создает пустой контекст запуска
func NewContext() *Context {
	return &Context{
		values: make(map[string]interface{}),
	}
}

// Push сохраняет значение под ключом key от имени задачи taskID
func (c *Context) Push(taskID, key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[c.composeKey(taskID, key)] = value
}

// Pull возвращает значение, сохраненное задачей taskID под ключом key
func (c *Context) Pull(taskID, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.values[c.composeKey(taskID, key)]
	return value, ok
}

// PullString возвращает строковое значение или ошибку, если значения нет
// или оно имеет другой тип
func (c *Context) PullString(taskID, key string) (string, error) {
	value, ok := c.Pull(taskID, key)
	if !ok {
		return "", fmt.Errorf("задача %s не опубликовала значение %s", taskID, key)
	}

	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("значение %s задачи %s не является строкой", key, taskID)
	}

	return s, nil
}

// PullInt возвращает целочисленное значение или ошибку, если значения нет
// или оно имеет другой тип
func (c *Context) PullInt(taskID, key string) (int, error) {
	value, ok := c.Pull(taskID, key)
	if !ok {
		return 0, fmt.Errorf("задача %s не опубликовала значение %s", taskID, key)
	}

	n, ok := value.(int)
	if !ok {
		return 0, fmt.Errorf("значение %s задачи %s не является целым числом", key, taskID)
	}

	return n, nil
}

func (c *Context) composeKey(taskID, key string) string {
	return taskID + "/" + key
}
