package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Prompt file names under the prompts directory, without extension.
const (
	PromptPlanner = "planner"
	PromptCoach   = "coach"
)

// PromptProvider loads prompt files from disk and caches them. Prompts are
// plain markdown files so they can be tuned without a rebuild.
type PromptProvider struct {
	dir       string
	cacheLock sync.RWMutex
	cache     map[string]string
	logger    *zap.Logger
}

func NewPromptProvider(dir string, logger *zap.Logger) *PromptProvider {
	return &PromptProvider{
		dir:    dir,
		cache:  make(map[string]string),
		logger: logger.Named("PromptProvider"),
	}
}

// Get returns the content of the named prompt, reading it from disk on
// first use.
func (p *PromptProvider) Get(name string) (string, error) {
	p.cacheLock.RLock()
	content, ok := p.cache[name]
	p.cacheLock.RUnlock()
	if ok {
		return content, nil
	}

	path := filepath.Join(p.dir, name+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}
	content = strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}

	p.cacheLock.Lock()
	p.cache[name] = content
	p.cacheLock.Unlock()

	p.logger.Debug("Prompt loaded", zap.String("name", name), zap.Int("bytes", len(content)))
	return content, nil
}
