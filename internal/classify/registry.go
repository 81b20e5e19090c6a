package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"chartfeed/internal/logger"
)

// FileConfig maps the policies file.
type FileConfig struct {
	Policies map[string]Policy `mapstructure:"policies" yaml:"policies"`
}

// Snapshot is the policy set produced by one load of the registry.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Active   string
	Policies map[string]Policy
}

// Registry serves classification policies and hot-reloads the backing file
// when it changes. File policies overlay the built-ins; a failed reload
// keeps the last good snapshot. A registry without a file serves only the
// built-ins.
type Registry struct {
	path   string
	active string
	v      *viper.Viper

	mu       sync.RWMutex
	snapshot Snapshot
}

var policySchema = jsonschema.MustCompileString("policies.json", `{
	"type": "object",
	"properties": {
		"policies": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"doji_threshold": {"type": "number", "minimum": 0, "maximum": 1},
					"weak_threshold": {"type": "number", "minimum": 0, "maximum": 1},
					"strong_threshold": {"type": "number", "minimum": 0, "maximum": 1},
					"labels": {
						"type": "object",
						"properties": {
							"bull_strong": {"type": "string"},
							"bear_strong": {"type": "string"},
							"bull_weak": {"type": "string"},
							"bear_weak": {"type": "string"},
							"doji": {"type": "string"},
							"reversal": {"type": "string"}
						},
						"additionalProperties": false
					}
				},
				"additionalProperties": false
			}
		}
	},
	"required": ["policies"],
	"additionalProperties": false
}`)

// NewRegistry reads the policy file and watches it for updates. active
// selects the policy classification runs under and must exist in the file
// or among the built-ins; empty means the directional built-in.
func NewRegistry(path, active string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return NewBuiltinRegistry(active)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read policy config failed: %w", err)
	}
	r := &Registry{path: path, active: activeOrDefault(active), v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("policy reload failed: %v", err)
		}
	})
	v.WatchConfig()
	return r, nil
}

// NewBuiltinRegistry serves only the compiled-in policies.
func NewBuiltinRegistry(active string) (*Registry, error) {
	r := &Registry{active: activeOrDefault(active)}
	policies := builtinPolicies()
	if _, ok := policies[r.active]; !ok {
		return nil, fmt.Errorf("active policy %q not defined", r.active)
	}
	r.snapshot = Snapshot{
		Version:  1,
		LoadedAt: time.Now(),
		Active:   r.active,
		Policies: policies,
	}
	return r, nil
}

// Active returns the policy classification currently runs under.
func (r *Registry) Active() Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.Policies[r.snapshot.Active]
}

// Policy returns a named policy from the current snapshot.
func (r *Registry) Policy(name string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.snapshot.Policies[strings.TrimSpace(name)]
	return p, ok
}

// Snapshot returns the current policy set.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

func (r *Registry) reload() error {
	cfg, err := readPolicyFile(r.path)
	if err != nil {
		return err
	}
	policies := builtinPolicies()
	for name, p := range cfg.Policies {
		norm, err := normalizePolicy(name, p)
		if err != nil {
			return err
		}
		policies[norm.Name] = norm
	}
	if _, ok := policies[r.active]; !ok {
		return fmt.Errorf("active policy %q not defined", r.active)
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Active:   r.active,
		Policies: policies,
	}
	r.mu.Unlock()
	logger.Infof("Policy registry loaded %d policies from %s (active=%s)",
		len(policies), filepath.Base(r.path), r.active)
	return nil
}

func readPolicyFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read policy config failed: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return FileConfig{}, fmt.Errorf("parse policy config failed: %w", err)
	}
	if err := validateDoc(doc); err != nil {
		return FileConfig{}, fmt.Errorf("policy config invalid: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse policy config failed: %w", err)
	}
	return cfg, nil
}

// validateDoc runs the YAML document through the JSON schema. The roundtrip
// through encoding/json turns YAML ints into the float64 values the schema
// validator expects.
func validateDoc(doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return policySchema.Validate(v)
}

func normalizePolicy(name string, p Policy) (Policy, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = strings.TrimSpace(name)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func builtinPolicies() map[string]Policy {
	return map[string]Policy{
		Directional.Name: Directional,
		Pressure.Name:    Pressure,
	}
}

func activeOrDefault(active string) string {
	active = strings.TrimSpace(active)
	if active == "" {
		return Directional.Name
	}
	return active
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := Snapshot{
		Version:  src.Version,
		LoadedAt: src.LoadedAt,
		Active:   src.Active,
		Policies: make(map[string]Policy, len(src.Policies)),
	}
	for name, p := range src.Policies {
		dst.Policies[name] = p
	}
	return dst
}
