package broker

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Classifier{}
)

func init() {
	Register(NewIBI())
	Register(NewGeneric())
}

// Register makes a classifier available under its broker name. Names are
// case-insensitive; registering the same name twice replaces the previous
// classifier.
func Register(c Classifier) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(c.Name())] = c
}

// Get returns the classifier for the named broker.
func Get(name string) (Classifier, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("no classifier registered for broker %q (supported: %s)",
			name, strings.Join(supportedLocked(), ", "))
	}
	return c, nil
}

// Supported returns the registered broker names, sorted.
func Supported() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return supportedLocked()
}

func supportedLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
