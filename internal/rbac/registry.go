package rbac

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vendora-hq/vendora/internal/models"
)

// ResourceDefinition describes a protectable resource declared in code.
// Definitions seed new store rows only; administrator edits to existing
// rows always win over the in-code values.
type ResourceDefinition struct {
	Key           string
	Type          string
	Name          string
	Description   string
	ParentKey     string
	Path          string
	SortOrder     int
	RequiredLevel int
}

type resourceRegistry struct {
	mu        sync.RWMutex
	resources map[string]*ResourceDefinition
}

var globalRegistry = &resourceRegistry{
	resources: make(map[string]*ResourceDefinition),
}

var (
	errNilDefinition = errors.New("rbac: nil resource definition")
	errEmptyKey      = errors.New("rbac: resource key is required")
	errDuplicateKey  = errors.New("rbac: resource key already registered")
	errInvalidType   = errors.New("rbac: resource type must be page or component")
	errSelfParent    = errors.New("rbac: resource cannot be its own parent")
)

// Register adds a resource definition to the global registry.
func Register(def *ResourceDefinition) error {
	if def == nil {
		return errNilDefinition
	}

	cp := *def
	cp.Key = strings.TrimSpace(cp.Key)
	if cp.Key == "" {
		return errEmptyKey
	}
	if cp.Type != models.ResourceTypePage && cp.Type != models.ResourceTypeComponent {
		return fmt.Errorf("%w: %q", errInvalidType, cp.Type)
	}

	cp.ParentKey = strings.TrimSpace(cp.ParentKey)
	if cp.ParentKey == cp.Key && cp.ParentKey != "" {
		return errSelfParent
	}
	if cp.Name == "" {
		cp.Name = cp.Key
	}
	if cp.RequiredLevel <= 0 {
		cp.RequiredLevel = 1
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.resources[cp.Key]; exists {
		return fmt.Errorf("%w: %s", errDuplicateKey, cp.Key)
	}

	globalRegistry.resources[cp.Key] = &cp
	return nil
}

// Get returns a copy of the registered definition for the given key.
func Get(key string) (*ResourceDefinition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.resources[key]
	if !ok {
		return nil, false
	}
	cp := *def
	return &cp, true
}

// All returns the registered definitions ordered by sort order, then key.
func All() []ResourceDefinition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make([]ResourceDefinition, 0, len(globalRegistry.resources))
	for _, def := range globalRegistry.resources {
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ValidateParents ensures every parent reference names a registered resource.
func ValidateParents() error {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	for _, def := range globalRegistry.resources {
		if def.ParentKey == "" {
			continue
		}
		if _, ok := globalRegistry.resources[def.ParentKey]; !ok {
			return fmt.Errorf("rbac: resource %s references unknown parent %s", def.Key, def.ParentKey)
		}
	}
	return nil
}

// removeResource clears a registry entry. Intended for testing only.
func removeResource(key string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.resources, key)
}
