// Package hotkeys grabs configured key and mouse chords on the root window
// and forwards presses to the command dispatcher.
package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/splitwm/internal/commands"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Dispatcher queues the command bound to a chord.
type Dispatcher interface {
	Dispatch(chord string) (string, error)
}

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler owns the root-window grabs for every binding.
type Handler struct {
	xu         *xgbutil.XUtil
	root       xproto.Window
	dispatcher Dispatcher
	logger     *slog.Logger

	mu     sync.Mutex
	chords []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler for an X11 backend.
func NewHandler(backend any, dispatcher Dispatcher, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, errors.New("hotkeys require an X11 backend")
	}
	if logger == nil {
		logger = slog.Default()
	}

	xu := accessor.XUtil()
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:         xu,
		root:       accessor.RootWindow(),
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// Bind drops every existing grab and grabs the given bindings. A chord that
// cannot be grabbed is reported but does not stop the others.
func (h *Handler) Bind(bindings []commands.Binding) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)
	mousebind.Detach(h.xu, h.root)
	h.chords = h.chords[:0]

	var errs []error
	for _, b := range bindings {
		var err error
		if b.Mouse {
			err = h.bindMouse(b.Chord)
		} else {
			err = h.bindKey(b.Chord)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to bind %q: %w", b.Chord, err))
			continue
		}
		h.chords = append(h.chords, b.Chord)
	}

	h.logger.Info("bindings registered", "count", len(h.chords), "failed", len(errs))
	return errors.Join(errs...)
}

// Chords returns the chords currently grabbed.
func (h *Handler) Chords() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.chords))
	copy(out, h.chords)
	return out
}

func (h *Handler) bindKey(chord string) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.press(chord)
	}).Connect(h.xu, h.root, chord, true)
}

func (h *Handler) bindMouse(chord string) error {
	return mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		h.press(chord)
	}).Connect(h.xu, h.root, chord, false, true)
}

func (h *Handler) press(chord string) {
	job, err := h.dispatcher.Dispatch(chord)
	if err != nil {
		h.logger.Warn("chord not dispatched", "chord", chord, "error", err)
		return
	}
	h.logger.Debug("chord dispatched", "chord", chord, "job", job)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the given modifier masks,
// including the empty one.
func ignoreMasks(base []uint16) []uint16 {
	out := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
