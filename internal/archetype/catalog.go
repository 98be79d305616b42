package archetype

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Module is a designer-authored capability bundle. It implements every
// provider interface and reports only the blocks that are present.
type Module struct {
	Name      string             `json:"name" jsonschema:"title=Module name,description=Designer facing module identifier,minLength=1"`
	Pierce    *PierceConfig      `json:"pierce,omitempty" jsonschema:"title=Pierce"`
	Bounce    *BounceConfig      `json:"bounce,omitempty" jsonschema:"title=Bounce"`
	Sticky    *StickyConfig      `json:"sticky,omitempty" jsonschema:"title=Sticky"`
	Explosive *ExplosiveConfig   `json:"explosive,omitempty" jsonschema:"title=Explosive"`
	Homing    *HomingConfig      `json:"homing,omitempty" jsonschema:"title=Homing"`
	Tracking  *TrackingConfig    `json:"tracking,omitempty" jsonschema:"title=Tracking"`
	AimAssist *AimAssistConfig   `json:"aimAssist,omitempty" jsonschema:"title=Aim assist"`
	Steps     []DamageStepConfig `json:"steps,omitempty" jsonschema:"title=Damage steps"`
}

func (m Module) PierceCapability() (PierceConfig, bool) {
	if m.Pierce == nil {
		return PierceConfig{}, false
	}
	return *m.Pierce, true
}

func (m Module) BounceCapability() (BounceConfig, bool) {
	if m.Bounce == nil {
		return BounceConfig{}, false
	}
	return *m.Bounce, true
}

func (m Module) StickyCapability() (StickyConfig, bool) {
	if m.Sticky == nil {
		return StickyConfig{}, false
	}
	return *m.Sticky, true
}

func (m Module) ExplosiveCapability() (ExplosiveConfig, bool) {
	if m.Explosive == nil {
		return ExplosiveConfig{}, false
	}
	return *m.Explosive, true
}

func (m Module) HomingCapability() (HomingConfig, bool) {
	if m.Homing == nil {
		return HomingConfig{}, false
	}
	return *m.Homing, true
}

func (m Module) TrackingCapability() (TrackingConfig, bool) {
	if m.Tracking == nil {
		return TrackingConfig{}, false
	}
	return *m.Tracking, true
}

func (m Module) AimAssistCapability() (AimAssistConfig, bool) {
	if m.AimAssist == nil {
		return AimAssistConfig{}, false
	}
	return *m.AimAssist, true
}

func (m Module) DamageSteps() []DamageStepConfig {
	return m.Steps
}

// WeaponDefinition models a catalog entry: projectile physics plus the
// weapon's permanent modules followed by its swappable ones.
type WeaponDefinition struct {
	ID        string   `json:"id" jsonschema:"title=Weapon id,pattern=^[a-z0-9\-]+$,description=Designer facing weapon identifier,minLength=1"`
	Physics   Physics  `json:"physics" jsonschema:"title=Physics"`
	Permanent []Module `json:"permanent,omitempty" jsonschema:"title=Permanent modules,description=Modules built into the weapon"`
	Swappable []Module `json:"swappable,omitempty" jsonschema:"title=Swappable modules,description=Modules installed by the player"`
}

// Providers returns the weapon's modules in compilation order.
func (w WeaponDefinition) Providers() []any {
	providers := make([]any, 0, len(w.Permanent)+len(w.Swappable))
	for _, m := range w.Permanent {
		providers = append(providers, m)
	}
	for _, m := range w.Swappable {
		providers = append(providers, m)
	}
	return providers
}

// FileDefinitions represents the contents of config/weapons/definitions.json.
type FileDefinitions []WeaponDefinition

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

type bytesSource struct {
	name string
	data []byte
}

func (b bytesSource) Load() ([]byte, error) {
	return b.data, nil
}

func (b bytesSource) Path() string {
	return b.name
}

// Catalog resolves weapon definitions from one or more JSON files. Later
// sources override earlier ones.
type Catalog struct {
	sources []source

	mu      sync.RWMutex
	weapons map[string]WeaponDefinition
}

// DefaultPaths returns the canonical catalog locations relative to the module
// root.
func DefaultPaths() []string {
	return []string{
		filepath.Join("config", "weapons", "definitions.json"),
		filepath.Join("..", "config", "weapons", "definitions.json"),
	}
}

// LoadCatalog builds a catalog from file paths. Missing files are skipped.
func LoadCatalog(paths ...string) (*Catalog, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: filepath.Clean(trimmed)})
	}
	return newCatalog(sources...)
}

// ParseCatalog builds a catalog from an in-memory document.
func ParseCatalog(name string, data []byte) (*Catalog, error) {
	return newCatalog(bytesSource{name: name, data: data})
}

func newCatalog(sources ...source) (*Catalog, error) {
	c := &Catalog{
		sources: append([]source(nil), sources...),
		weapons: make(map[string]WeaponDefinition),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-parses every source. On error the previous definitions stay.
func (c *Catalog) Reload() error {
	if c == nil {
		return nil
	}
	weapons := make(map[string]WeaponDefinition)
	for _, src := range c.sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("catalog: failed loading %s: %w", src.Path(), err)
		}
		definitions, err := decodeWeapons(data)
		if err != nil {
			return fmt.Errorf("catalog: failed parsing %s: %w", src.Path(), err)
		}
		seen := make(map[string]struct{}, len(definitions))
		for _, def := range definitions {
			id := strings.TrimSpace(def.ID)
			if id == "" {
				return fmt.Errorf("catalog: weapon missing id in %s", src.Path())
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("catalog: duplicate id %q in %s", id, src.Path())
			}
			seen[id] = struct{}{}
			def.ID = id
			weapons[id] = def
		}
	}

	c.mu.Lock()
	c.weapons = weapons
	c.mu.Unlock()
	return nil
}

// Weapon returns the definition registered under id.
func (c *Catalog) Weapon(id string) (WeaponDefinition, bool) {
	if c == nil {
		return WeaponDefinition{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.weapons[id]
	return def, ok
}

// IDs returns every weapon id in lexical order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.weapons))
	for id := range c.weapons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func decodeWeapons(data []byte) ([]WeaponDefinition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var weapons FileDefinitions
		if err := json.Unmarshal(trimmed, &weapons); err != nil {
			return nil, err
		}
		return weapons, nil
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(object))
		for id := range object {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		weapons := make([]WeaponDefinition, 0, len(ids))
		for _, id := range ids {
			var def WeaponDefinition
			if err := json.Unmarshal(object[id], &def); err != nil {
				return nil, fmt.Errorf("weapon %q: %w", id, err)
			}
			if def.ID == "" {
				def.ID = id
			} else if def.ID != id {
				return nil, fmt.Errorf("weapon id %q does not match key %q", def.ID, id)
			}
			weapons = append(weapons, def)
		}
		return weapons, nil
	default:
		return nil, fmt.Errorf("unexpected json token %q", string(trimmed[:1]))
	}
}
