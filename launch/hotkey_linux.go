//go:build linux

package launch

import "golang.design/x/hotkey"

// Mod1 is Alt on the usual X11 keymaps.
const altModifier = hotkey.Mod1
