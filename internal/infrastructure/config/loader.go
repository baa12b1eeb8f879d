package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/category"
	"partbridge/internal/domain/hooks"
	"partbridge/internal/infrastructure/inventree"
	"partbridge/pkg/logger"
)

const (
	categoriesFile = "categories.yaml"
	hooksFile      = "hooks.yaml"
)

// Snapshot is one immutable load of the importer configuration files.
type Snapshot struct {
	Categories *category.Map
	Rules      *hooks.Engine
}

// Loader materializes the category map and part rules from the config dir.
// The first load happens lazily under a lock so concurrent first requests do
// not race; afterwards the snapshot is reused until Reload.
type Loader struct {
	dir string
	log *logger.Logger

	mu       sync.Mutex
	snapshot *Snapshot
}

// NewLoader creates a loader for the given config dir. An empty dir is
// valid: it yields an empty category map and no rules.
func NewLoader(dir string, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Default()
	}
	return &Loader{dir: dir, log: log.WithComponent("config")}
}

// Ensure returns the current snapshot, loading it on first use. api, when
// non-nil, is used to resolve canonical paths to inventory category IDs
// (a read-only call, safe during preview).
func (l *Loader) Ensure(ctx context.Context, api inventree.API) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.snapshot != nil {
		return l.snapshot, nil
	}
	return l.reloadLocked(ctx, api)
}

// Reload discards the cached snapshot and loads afresh. Callers invoke this
// before a commit so category-map edits made between requests are picked up.
func (l *Loader) Reload(ctx context.Context, api inventree.API) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reloadLocked(ctx, api)
}

func (l *Loader) reloadLocked(ctx context.Context, api inventree.API) (*Snapshot, error) {
	snapshot := &Snapshot{Categories: category.NewMap()}

	if l.dir == "" {
		l.snapshot = snapshot
		return snapshot, nil
	}

	if err := l.loadCategories(snapshot.Categories); err != nil {
		return nil, err
	}
	rules, err := l.loadRules()
	if err != nil {
		return nil, err
	}
	snapshot.Rules = rules

	if api != nil {
		if err := resolveCategoryIDs(ctx, api, snapshot.Categories); err != nil {
			// Unresolved IDs only matter at commit time; preview still works.
			l.log.Warnw("could not resolve category ids", "error", err)
		}
	}

	l.log.Infow("importer configuration loaded",
		"categories", snapshot.Categories.Len(),
		"rules", snapshot.Rules.Len(),
	)
	l.snapshot = snapshot
	return snapshot, nil
}

// loadCategories reads categories.yaml: a nested mapping whose keys are
// category names and whose nesting mirrors the canonical taxonomy. Every
// node name maps to its root-to-leaf path.
func (l *Loader) loadCategories(m *category.Map) error {
	raw, err := os.ReadFile(filepath.Join(l.dir, categoriesFile))
	if err != nil {
		return apperror.NewConfiguration(
			fmt.Sprintf("missing %q in importer config dir %q", categoriesFile, l.dir)).
			WithCause(err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return apperror.NewConfiguration(
			fmt.Sprintf("unable to parse %s", categoriesFile)).WithCause(err)
	}

	registerTree(m, tree, nil)
	return nil
}

func registerTree(m *category.Map, tree map[string]any, parents []string) {
	for name, children := range tree {
		path := append(append([]string(nil), parents...), name)
		m.Add(name, path)
		if sub, ok := children.(map[string]any); ok {
			registerTree(m, sub, path)
		}
	}
}

// loadRules reads hooks.yaml. A missing file means no rules.
func (l *Loader) loadRules() (*hooks.Engine, error) {
	raw, err := os.ReadFile(filepath.Join(l.dir, hooksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperror.NewConfiguration(
			fmt.Sprintf("unable to read %s", hooksFile)).WithCause(err)
	}

	var spec struct {
		Rules []hooks.Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, apperror.NewConfiguration(
			fmt.Sprintf("unable to parse %s", hooksFile)).WithCause(err)
	}
	return hooks.NewEngine(spec.Rules)
}

// resolveCategoryIDs matches registered canonical paths against the
// inventory category tree so commits can reference category IDs directly.
func resolveCategoryIDs(ctx context.Context, api inventree.API, m *category.Map) error {
	categories, err := api.ListCategories(ctx)
	if err != nil {
		return err
	}

	byPath := make(map[string]int, len(categories))
	for _, cat := range categories {
		byPath[strings.ToLower(cat.PathString)] = cat.PK
	}

	for _, name := range m.Names() {
		entry, ok := m.Lookup(name)
		if !ok {
			continue
		}
		joined := strings.ToLower(strings.Join(entry.Path, "/"))
		if pk, ok := byPath[joined]; ok {
			m.SetID(name, pk)
		}
	}
	return nil
}
