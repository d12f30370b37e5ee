//go:build darwin

package launch

import "golang.design/x/hotkey"

const altModifier = hotkey.ModOption
