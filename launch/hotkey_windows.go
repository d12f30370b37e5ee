//go:build windows

package launch

import "golang.design/x/hotkey"

const altModifier = hotkey.ModAlt
