package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.design/x/hotkey"
)

var ErrBadHotkey = errors.New("invalid hotkey")

// ParseHotkey reads combinations such as "ctrl+0" or "ctrl+shift+F2".
// Exactly one key and at least one modifier are required.
func ParseHotkey(s string) ([]hotkey.Modifier, hotkey.Key, error) {
	var mods []hotkey.Modifier
	var key hotkey.Key
	found := false
	for _, part := range strings.Split(s, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			return nil, 0, fmt.Errorf("%w: %q", ErrBadHotkey, s)
		}
		if mod, ok := parseModifier(part); ok {
			mods = append(mods, mod)
			continue
		}
		k, ok := parseKey(part)
		if !ok || found {
			return nil, 0, fmt.Errorf("%w: %q", ErrBadHotkey, s)
		}
		key, found = k, true
	}
	if !found || len(mods) == 0 {
		return nil, 0, fmt.Errorf("%w: %q", ErrBadHotkey, s)
	}
	return mods, key, nil
}

func parseModifier(s string) (hotkey.Modifier, bool) {
	switch s {
	case "ctrl", "control":
		return hotkey.ModCtrl, true
	case "shift":
		return hotkey.ModShift, true
	case "alt", "option":
		return altModifier, true
	}
	return 0, false
}

var digitKeys = [...]hotkey.Key{
	hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
	hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
}

var letterKeys = [...]hotkey.Key{
	hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE, hotkey.KeyF,
	hotkey.KeyG, hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ, hotkey.KeyK, hotkey.KeyL,
	hotkey.KeyM, hotkey.KeyN, hotkey.KeyO, hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR,
	hotkey.KeyS, hotkey.KeyT, hotkey.KeyU, hotkey.KeyV, hotkey.KeyW, hotkey.KeyX,
	hotkey.KeyY, hotkey.KeyZ,
}

var functionKeys = [...]hotkey.Key{
	hotkey.KeyF1, hotkey.KeyF2, hotkey.KeyF3, hotkey.KeyF4, hotkey.KeyF5, hotkey.KeyF6,
	hotkey.KeyF7, hotkey.KeyF8, hotkey.KeyF9, hotkey.KeyF10, hotkey.KeyF11, hotkey.KeyF12,
}

func parseKey(s string) (hotkey.Key, bool) {
	switch {
	case s == "space":
		return hotkey.KeySpace, true
	case len(s) == 1 && s[0] >= '0' && s[0] <= '9':
		return digitKeys[s[0]-'0'], true
	case len(s) == 1 && s[0] >= 'a' && s[0] <= 'z':
		return letterKeys[s[0]-'a'], true
	case len(s) >= 2 && s[0] == 'f':
		n, err := strconv.Atoi(s[1:])
		if err == nil && n >= 1 && n <= len(functionKeys) && s[1] != '0' {
			return functionKeys[n-1], true
		}
	}
	return 0, false
}

// listenHotkey registers the global shortcut and turns each press into an
// EventOpenAdd. A registration failure only disables the shortcut.
func (a *App) listenHotkey(ctx context.Context) {
	mods, key, err := ParseHotkey(a.cfg.Hotkey)
	if err != nil {
		a.logger.Warn("hotkey disabled", slog.Any("error", err))
		return
	}
	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		a.logger.Warn("hotkey disabled", slog.String("hotkey", a.cfg.Hotkey), slog.Any("error", err))
		return
	}
	defer func() { _ = hk.Unregister() }()
	a.logger.Info("hotkey registered", slog.String("hotkey", a.cfg.Hotkey))

	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Keydown():
			a.Post(EventOpenAdd)
		}
	}
}
