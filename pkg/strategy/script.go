package strategy

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/dop251/goja"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/registry"
)

// Script runs a user-supplied JavaScript resolver as a chain strategy.
// The script must define:
//
//	function resolve(id, page) {
//	    // return {kind: "css", value: "#thing"} or null
//	}
//
// where page is {key, entry} with the registered entry for the id.
// Script errors are treated as "no match" - user scripts are test
// assets, not infrastructure.
type Script struct {
	runtime *goja.Runtime
	fn      goja.Callable
	reg     *registry.Registry
	logger  *log.Logger
	mu      sync.Mutex // goja runtimes are not safe for concurrent use
}

// NewScript compiles the script source and looks up its resolve function.
func NewScript(reg *registry.Registry, source string, logger *log.Logger) (*Script, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.Ltime)
	}

	rt := goja.New()
	setupConsole(rt, logger)

	if _, err := rt.RunString(source); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("script strategy: script failed to load").WithCause(err)
	}

	fn, ok := goja.AssertFunction(rt.Get("resolve"))
	if !ok {
		return nil, core.ErrInvalidConfig.WithMessage("script strategy: script does not define resolve(id, page)")
	}

	return &Script{runtime: rt, fn: fn, reg: reg, logger: logger}, nil
}

// LoadScript reads a script file and builds the strategy.
func LoadScript(reg *registry.Registry, path string, logger *log.Logger) (*Script, error) {
	source, err := os.ReadFile(path) //#nosec G304 -- user-provided script file
	if err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("script strategy: cannot read script").WithCause(err)
	}
	return NewScript(reg, string(source), logger)
}

// Name implements Strategy.
func (s *Script) Name() string { return NameScript }

// Attempt implements Strategy.
func (s *Script) Attempt(_ context.Context, page core.PageContext, id core.SemanticID) (core.Locator, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, _ := s.reg.Lookup(id)
	pageArg := map[string]interface{}{
		"key": page.Key(),
		"entry": map[string]interface{}{
			"testId":      entry.TestID,
			"css":         entry.CSS,
			"xpath":       entry.XPath,
			"text":        entry.Text,
			"tag":         entry.Tag,
			"description": entry.Description,
		},
	}

	result, err := s.fn(goja.Undefined(), s.runtime.ToValue(string(id)), s.runtime.ToValue(pageArg))
	if err != nil {
		s.logger.Printf("script strategy: resolve(%s) threw: %v", id, err)
		return core.Locator{}, false, nil
	}
	if result == nil || goja.IsNull(result) || goja.IsUndefined(result) {
		return core.Locator{}, false, nil
	}

	var out struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
	}
	if err := s.runtime.ExportTo(result, &out); err != nil || out.Value == "" {
		s.logger.Printf("script strategy: resolve(%s) returned unusable value", id)
		return core.Locator{}, false, nil
	}

	kind := core.Kind(out.Kind)
	if !kind.Valid() {
		kind = core.KindHeuristic
	}
	return core.Locator{Kind: kind, Value: out.Value, Confidence: 0.5}, true, nil
}

// setupConsole adds console.log/error that write to the logger.
func setupConsole(rt *goja.Runtime, logger *log.Logger) {
	makeConsoleFunc := func(prefix string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			logger.Println(append([]interface{}{prefix}, args...)...)
			return goja.Undefined()
		}
	}

	console := rt.NewObject()
	_ = console.Set("log", makeConsoleFunc("script:"))
	_ = console.Set("error", makeConsoleFunc("script error:"))
	_ = console.Set("warn", makeConsoleFunc("script warn:"))
	_ = rt.Set("console", console)
}
