package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicyFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const scalperPolicies = `policies:
  scalper:
    doji_threshold: 0.1
    weak_threshold: 0.5
    strong_threshold: 0.8
    labels:
      bull_strong: momentum-up
      bear_strong: momentum-down
      bull_weak: drift-up
      bear_weak: drift-down
      doji: flat
`

func TestRegistryLoadsFilePolicies(t *testing.T) {
	r, err := NewRegistry(writePolicyFile(t, scalperPolicies), "scalper")
	require.NoError(t, err)

	p := r.Active()
	assert.Equal(t, "scalper", p.Name)
	assert.Equal(t, 0.8, p.Strong)
	assert.Equal(t, "momentum-up", Label(100, 110, 99, 109, p))

	// File policies overlay the built-ins rather than replacing them.
	_, ok := r.Policy("directional")
	assert.True(t, ok)

	snap := r.Snapshot()
	assert.Equal(t, "scalper", snap.Active)
	assert.Contains(t, snap.Policies, "pressure")
}

func TestRegistryRejects(t *testing.T) {
	t.Run("unknown active policy", func(t *testing.T) {
		_, err := NewRegistry(writePolicyFile(t, scalperPolicies), "daytrader")
		assert.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		body := `policies:
  scalper:
    typo_threshold: 0.5
`
		_, err := NewRegistry(writePolicyFile(t, body), "scalper")
		assert.Error(t, err)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		body := `policies:
  scalper:
    doji_threshold: 0.1
    weak_threshold: 0.5
    strong_threshold: 3
    labels:
      bull_strong: a
      bear_strong: b
      bull_weak: c
      bear_weak: d
      doji: e
`
		_, err := NewRegistry(writePolicyFile(t, body), "scalper")
		assert.Error(t, err)
	})

	t.Run("missing class labels", func(t *testing.T) {
		body := `policies:
  scalper:
    doji_threshold: 0.1
    weak_threshold: 0.5
    strong_threshold: 0.8
`
		_, err := NewRegistry(writePolicyFile(t, body), "scalper")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewRegistry(filepath.Join(t.TempDir(), "nope.yaml"), "")
		assert.Error(t, err)
	})
}

func TestBuiltinRegistry(t *testing.T) {
	r, err := NewBuiltinRegistry("")
	require.NoError(t, err)
	assert.Equal(t, "directional", r.Active().Name)

	_, ok := r.Policy("pressure")
	assert.True(t, ok)

	_, err = NewBuiltinRegistry("made-up")
	assert.Error(t, err)
}

func TestRegistryEmptyPathServesBuiltins(t *testing.T) {
	r, err := NewRegistry("", "pressure")
	require.NoError(t, err)
	assert.Equal(t, "pressure", r.Active().Name)
}
