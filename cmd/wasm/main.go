//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall/js"
	"time"

	"github.com/inamate/flip/internal/dom"
	"github.com/inamate/flip/internal/easing"
	"github.com/inamate/flip/internal/flip"
)

var (
	mu       sync.Mutex
	tree     *dom.Tree
	sessions = make(map[string]*flip.Session)
	shared   = make(map[string]*flip.Shared) // sessionID/name -> controller
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	tree = dom.New()

	flipEngine := js.Global().Get("Object").New()

	flipEngine.Set("createSession", js.FuncOf(createSession))
	flipEngine.Set("register", js.FuncOf(register))
	flipEngine.Set("group", js.FuncOf(group))
	flipEngine.Set("shared", js.FuncOf(sharedCreate))
	flipEngine.Set("sharedCapture", js.FuncOf(sharedCapture))
	flipEngine.Set("trackAll", js.FuncOf(trackAll))
	flipEngine.Set("capture", js.FuncOf(capture))
	flipEngine.Set("commit", js.FuncOf(commit))
	flipEngine.Set("pauseAll", js.FuncOf(pauseAll))
	flipEngine.Set("resumeAll", js.FuncOf(resumeAll))
	flipEngine.Set("easings", js.FuncOf(easings))

	js.Global().Set("flipEngine", flipEngine)
	js.Global().Set("flipWasmReady", js.ValueOf(true))

	select {}
}

// jsOptions is the JSON shape of flip.Options; durations are milliseconds.
type jsOptions struct {
	Duration        float64 `json:"duration"`
	Delay           float64 `json:"delay"`
	Easing          string  `json:"easing"`
	Stagger         float64 `json:"stagger"`
	TransformOrigin string  `json:"transformOrigin"`
	AnimateColor    bool    `json:"animateColor"`
	PreserveScale   bool    `json:"preserveScale"`
}

func ms(v float64) time.Duration { return time.Duration(v * float64(time.Millisecond)) }

// parseOptions reads an optional JSON options string at args[i] and an
// optional completion callback right after it.
func parseOptions(args []js.Value, i int) (flip.Options, error) {
	var o flip.Options
	if len(args) > i && args[i].Type() == js.TypeString {
		var raw jsOptions
		if err := json.Unmarshal([]byte(args[i].String()), &raw); err != nil {
			return o, fmt.Errorf("decode options: %w", err)
		}
		o = flip.Options{
			Duration:        ms(raw.Duration),
			Delay:           ms(raw.Delay),
			Easing:          raw.Easing,
			Stagger:         ms(raw.Stagger),
			TransformOrigin: raw.TransformOrigin,
			AnimateColor:    raw.AnimateColor,
			PreserveScale:   raw.PreserveScale,
		}
	}
	if len(args) > i+1 && args[i+1].Type() == js.TypeFunction {
		cb := args[i+1]
		o.OnComplete = func() { cb.Invoke() }
	}
	return o, nil
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func session(args []js.Value) (*flip.Session, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("missing session id")
	}
	mu.Lock()
	defer mu.Unlock()
	s, ok := sessions[args[0].String()]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", args[0].String())
	}
	return s, nil
}

// --- Commands ---

func createSession(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return result(fmt.Errorf("missing root id"))
	}
	opts := []flip.SessionOption{flip.WithLogger(slog.Default())}
	if len(args) > 1 {
		defaults, err := parseOptions(args, 1)
		if err != nil {
			return result(err)
		}
		base := flip.DefaultOptions()
		if defaults.Duration > 0 {
			base.Duration = defaults.Duration
		}
		if defaults.Easing != "" {
			base.Easing = defaults.Easing
		}
		if defaults.TransformOrigin != "" {
			base.TransformOrigin = defaults.TransformOrigin
		}
		base.Delay = defaults.Delay
		base.Stagger = defaults.Stagger
		opts = append(opts, flip.WithDefaults(base))
	}

	s := flip.NewSession(args[0].String(), tree, opts...)
	mu.Lock()
	sessions[s.ID()] = s
	mu.Unlock()
	return js.ValueOf(map[string]interface{}{"ok": true, "id": s.ID()})
}

func register(this js.Value, args []js.Value) interface{} {
	s, err := session(args)
	if err != nil {
		return result(err)
	}
	if len(args) < 2 {
		return result(fmt.Errorf("missing flip id"))
	}
	o, err := parseOptions(args, 2)
	if err != nil {
		return result(err)
	}
	_, err = s.Register(args[1].String(), o)
	return result(err)
}

func group(this js.Value, args []js.Value) interface{} {
	s, err := session(args)
	if err != nil {
		return result(err)
	}
	if len(args) < 2 {
		return result(fmt.Errorf("missing container id"))
	}
	o, err := parseOptions(args, 2)
	if err != nil {
		return result(err)
	}
	_, err = s.Group(args[1].String(), o)
	return result(err)
}

func sharedCreate(this js.Value, args []js.Value) interface{} {
	s, err := session(args)
	if err != nil {
		return result(err)
	}
	if len(args) < 2 {
		return result(fmt.Errorf("missing shared name"))
	}
	o, err := parseOptions(args, 2)
	if err != nil {
		return result(err)
	}
	sh, err := s.Shared(o)
	if err != nil {
		return result(err)
	}
	mu.Lock()
	shared[s.ID()+"/"+args[1].String()] = sh
	mu.Unlock()
	return result(nil)
}

func sharedCapture(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return result(fmt.Errorf("usage: sharedCapture(sessionId, name, flipId)"))
	}
	mu.Lock()
	sh, ok := shared[args[0].String()+"/"+args[1].String()]
	mu.Unlock()
	if !ok {
		return result(fmt.Errorf("unknown shared controller %q", args[1].String()))
	}
	sh.Capture(args[2].String())
	return result(nil)
}

func trackAll(this js.Value, args []js.Value) interface{} {
	s, err := session(args)
	if err != nil {
		return result(err)
	}
	o, err := parseOptions(args, 1)
	if err != nil {
		return result(err)
	}
	added, err := s.TrackAll(o)
	if err != nil {
		return result(err)
	}
	ids := make([]interface{}, len(added))
	for i, c := range added {
		ids[i] = c.ID()
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "added": ids})
}

func capture(this js.Value, args []js.Value) interface{} {
	s, err := session(args)
	if err != nil {
		return result(err)
	}
	s.Capture()
	return result(nil)
}

func commit(this js.Value, args []js.Value) interface{} {
	s, err := session(args)
	if err != nil {
		return result(err)
	}
	s.Commit()
	return result(nil)
}

func pauseAll(this js.Value, args []js.Value) interface{} {
	s, err := session(args)
	if err != nil {
		return result(err)
	}
	s.PauseAll()
	return result(nil)
}

func resumeAll(this js.Value, args []js.Value) interface{} {
	s, err := session(args)
	if err != nil {
		return result(err)
	}
	s.ResumeAll()
	return result(nil)
}

// --- Queries ---

func easings(this js.Value, args []js.Value) interface{} {
	names := easing.Names()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return js.ValueOf(out)
}
