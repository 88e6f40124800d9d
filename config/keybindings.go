package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"` // Optional overrides for specific actions
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "alt", "ctrl", "meta", "super"
	Secondary string `toml:"secondary"` // e.g., "alt+shift", "ctrl+shift"
}

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string // "j", "k", "enter", etc.
}

// actionRegistry maps action names to their default keybindings
// Users can override any of these in the [actions] section of keybindings.toml
var actionRegistry = map[string]actionDef{
	// Main view - Input
	"submit":      {"none", "enter"},
	"newline":     {"primary", "enter"},
	"voice":       {"primary", "v"},
	"clear_input": {"primary", "u"},

	// Main view - Modal toggles
	"help":   {"primary", "h"},
	"search": {"primary", "f"},

	// Main view - Scrolling
	"scroll_down":       {"primary", "j"},
	"scroll_up":         {"primary", "k"},
	"scroll_down_arrow": {"primary", "down"},
	"scroll_up_arrow":   {"primary", "up"},
	"half_page_down":    {"secondary", "j"},
	"half_page_up":      {"secondary", "k"},
	"page_down":         {"primary", "pgdown"},
	"page_up":           {"primary", "pgup"},
	"scroll_to_top":     {"primary", "g"},
	"scroll_to_bottom":  {"secondary", "g"},

	// Main view - Actions
	"quit":              {"primary", "q"},
	"yank_last_answer":  {"primary", "y"},
	"yank_conversation": {"primary", "c"},

	// Search modal
	"search_down": {"none", "down"},
	"search_up":   {"none", "up"},
}

// Actions lists every bindable action name, sorted.
func Actions() []string {
	names := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const (
	defaultPrimary   = "alt"
	defaultSecondary = "alt+shift"
)

func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   defaultPrimary,
			Secondary: defaultSecondary,
		},
	}
}

// LoadKeybindings reads <dataDir>/keybindings.toml, writing the commented
// template on first run. Unusable modifiers are rejected; risky ones are
// logged.
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	path := filepath.Join(dataDir, "keybindings.toml")
	kb := DefaultKeybindings()

	if !FileExists(path) {
		if err := os.WriteFile(path, []byte(GenerateKeybindingsTemplate()), 0600); err != nil {
			return nil, fmt.Errorf("failed to write keybindings: %w", err)
		}
		return kb, nil
	}

	if _, err := toml.DecodeFile(path, kb); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	ok, warning := kb.Validate()
	if !ok {
		return nil, fmt.Errorf("invalid keybindings in %s: %s", path, warning)
	}
	if warning != "" {
		DebugLog.Warn("[Keybindings] "+warning, zap.String("path", path))
	}
	return kb, nil
}

// GenerateKeybindingsTemplate returns the default TOML template
func GenerateKeybindingsTemplate() string {
	return `# WildWise Keybindings Configuration
# Location: <data_directory>/keybindings.toml
# This file uses TOML format: https://toml.io

# ==============================================================================
# MODIFIER KEYS (Simple Configuration)
# ==============================================================================
# Change these to avoid conflicts with your window manager/terminal multiplexor
# Most users only need to customize these two settings

[modifiers]
primary = "alt"          # Default: alt (Options: alt, ctrl, meta, super)
secondary = "alt+shift"  # Default: alt+shift

# Examples of alternative modifier configurations:
#
# For tmux users (Alt may conflict):
#   primary = "ctrl"
#   secondary = "ctrl+shift"
#
# For i3/sway users (Alt is window manager key):
#   primary = "super"
#   secondary = "super+shift"
#
# Mixed modifiers for power users:
#   primary = "alt"
#   secondary = "ctrl+shift"

# ==============================================================================
# PER-ACTION OVERRIDES (Advanced Configuration)
# ==============================================================================
# Optionally override specific actions for fine-grained control
# Uncomment and customize any actions you want to change
#
# Available actions:
#   submit, newline, voice, clear_input, help, search, quit,
#   yank_last_answer, yank_conversation, scroll_down, scroll_up,
#   scroll_down_arrow, scroll_up_arrow, half_page_down, half_page_up,
#   page_down, page_up, scroll_to_top, scroll_to_bottom,
#   search_down, search_up

[actions]
# Examples (uncomment to use):
#
# Vim-style navigation with Ctrl:
#   scroll_down = "ctrl+j"
#   scroll_up = "ctrl+k"
#
# Emacs-style shortcuts:
#   scroll_down = "ctrl+n"
#   scroll_up = "ctrl+p"
#
# Push-to-talk on a function key:
#   voice = "f2"
#
# Remap quit to avoid accidental exits:
#   quit = "ctrl+shift+q"
`
}

// Primary is the configured primary modifier, "alt" when unset
func (kb *KeyBindingsConfig) Primary() string {
	return orDefault(kb.Modifiers.Primary, defaultPrimary)
}

// Secondary is the configured secondary modifier, "alt+shift" when unset
func (kb *KeyBindingsConfig) Secondary() string {
	return orDefault(kb.Modifiers.Secondary, defaultSecondary)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// GetActionKey returns the key string bubbletea reports for action: the
// user's [actions] override, else the registry default under the configured
// modifiers. Unknown actions return "".
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override := kb.Actions[action]; override != "" {
		return override
	}

	def, ok := actionRegistry[action]
	if !ok {
		return ""
	}
	switch def.modifier {
	case "primary":
		return kb.Primary() + "+" + def.key
	case "secondary":
		return withModifier(kb.Secondary(), def.key)
	default:
		return def.key
	}
}

// withModifier joins mod and key the way terminals report them: a shifted
// letter arrives as its capital ("alt+shift" + "j" is "alt+J"), while other
// keys keep the explicit shift.
func withModifier(mod, key string) string {
	parts := strings.Split(mod, "+")
	isLetter := len(key) == 1 && key[0] >= 'a' && key[0] <= 'z'

	kept := parts[:0]
	shifted := false
	for _, part := range parts {
		if isLetter && strings.EqualFold(part, "shift") {
			shifted = true
			continue
		}
		kept = append(kept, part)
	}
	if shifted {
		key = strings.ToUpper(key)
	}
	return strings.Join(append(kept, key), "+")
}

// DisplayActionKey formats an action's key for help text: "alt+J" is shown
// as "Alt+Shift+J", "ctrl+f" as "Ctrl+F".
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}

	parts := strings.Split(key, "+")
	hasShift := false
	for _, part := range parts {
		if strings.EqualFold(part, "shift") {
			hasShift = true
		}
	}

	out := make([]string, 0, len(parts)+1)
	for i, part := range parts {
		if part == "" {
			continue
		}
		capital := len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z'
		if capital && !hasShift && i > 0 {
			out = append(out, "Shift")
		}
		out = append(out, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(out, "+")
}

// Validate reports whether the modifiers are usable, with a warning for
// choices that work but collide with terminal shortcuts
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary, secondary := kb.Primary(), kb.Secondary()

	if strings.EqualFold(primary, "shift") || strings.EqualFold(secondary, "shift") {
		return false, "shift alone conflicts with typing"
	}
	if strings.Contains(primary, "ctrl") || strings.Contains(secondary, "ctrl") {
		return true, "ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}
	return true, ""
}
