// Package icon renders the status symbols printed by the CLI in the variant
// chosen with icons.variant.
package icon

import (
	"github.com/Ducheved/sharpmote/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// variants maps each variant name to its field of iconDef.
var variants = []struct {
	name string
	pick func(*iconDef) string
}{
	{emoji, func(d *iconDef) string { return d.emoji }},
	{nerd, func(d *iconDef) string { return d.nerd }},
	{plain, func(d *iconDef) string { return d.plain }},
	{kaomoji, func(d *iconDef) string { return d.kaomoji }},
	{squares, func(d *iconDef) string { return d.squares }},
}

// AvailableVariants lists the accepted icons.variant values.
func AvailableVariants() []string {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.name
	}
	return names
}

type iconDef struct {
	emoji, nerd, plain, kaomoji, squares string
}

// Get renders i in the configured variant. An unknown variant renders nothing.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}

	variant := viper.GetString(key.IconsVariant)
	for _, v := range variants {
		if v.name == variant {
			return v.pick(def)
		}
	}
	return ""
}
