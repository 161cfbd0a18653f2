package scripting

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// EntryPoint is the global function a metric script must define. It receives
// a table of metric name to value and returns one number.
const EntryPoint = "metric"

// ErrNoEntryPoint is returned when a script does not define EntryPoint.
var ErrNoEntryPoint = errors.New("scripting: script does not define function " + EntryPoint)

// Metric is a ranking metric computed by a Lua script.
//
// A Metric owns one LState; Evaluate serialises calls so a Metric is safe for
// concurrent use.
type Metric struct {
	mu     sync.Mutex
	name   string
	L      *lua.LState
	limit  int
	logger *zap.Logger
}

// NewMetric compiles src into a sandboxed VM and checks that it defines
// EntryPoint.
//
// Precondition: name must be non-empty; logger must be non-nil.
// Postcondition: returns a ready Metric or an error; on error no VM is leaked.
func NewMetric(name, src string, instLimit int, logger *zap.Logger) (*Metric, error) {
	if name == "" {
		return nil, fmt.Errorf("scripting: NewMetric: name must not be empty")
	}
	L := NewSandboxedState()
	if err := withBudget(L, instLimit, func() error { return L.DoString(src) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading metric %q: %w", name, err)
	}
	if fn, ok := L.GetGlobal(EntryPoint).(*lua.LFunction); !ok || fn == nil {
		L.Close()
		return nil, fmt.Errorf("loading metric %q: %w", name, ErrNoEntryPoint)
	}
	return &Metric{name: name, L: L, limit: instLimit, logger: logger}, nil
}

// LoadMetric reads a metric script from path.
func LoadMetric(name, path string, instLimit int, logger *zap.Logger) (*Metric, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading %q: %w", path, err)
	}
	return NewMetric(name, string(src), instLimit, logger)
}

// LoadDir loads every *.lua file in dir in lexicographic order, naming each
// metric after its file's base name.
//
// Postcondition: on error every metric loaded so far is closed.
func LoadDir(dir string, instLimit int, logger *zap.Logger) ([]*Metric, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	out := make([]*Metric, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), ".lua")
		m, err := LoadMetric(name, p, instLimit, logger)
		if err != nil {
			for _, loaded := range out {
				loaded.Close()
			}
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Name returns the key the metric's value is stored under.
func (m *Metric) Name() string {
	return m.name
}

// Evaluate calls the script's metric function with values.
//
// Postcondition: returns an error if the script fails, exceeds its
// instruction limit, or returns anything other than a number. NaN is
// rejected; infinities pass through.
func (m *Metric) Evaluate(values map[string]float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	arg := m.L.NewTable()
	for k, v := range values {
		arg.RawSetString(k, lua.LNumber(v))
	}

	var ret lua.LValue = lua.LNil
	err := withBudget(m.L, m.limit, func() error {
		if err := m.L.CallByParam(lua.P{
			Fn:      m.L.GetGlobal(EntryPoint),
			NRet:    1,
			Protect: true,
		}, arg); err != nil {
			return err
		}
		ret = m.L.Get(-1)
		m.L.Pop(1)
		return nil
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("metric", m.name),
			zap.Error(err),
		)
		return 0, fmt.Errorf("scripting: metric %q: %w", m.name, err)
	}

	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("scripting: metric %q returned %s, want number", m.name, ret.Type())
	}
	v := float64(n)
	if math.IsNaN(v) {
		return 0, fmt.Errorf("scripting: metric %q returned NaN", m.name)
	}
	return v, nil
}

// Close releases the VM.
func (m *Metric) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}
