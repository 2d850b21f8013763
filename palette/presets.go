package palette

import (
	"sort"
	"strings"
)

func mustParse(entries ...string) Palette {
	p, err := Parse(entries)
	if err != nil {
		panic(err)
	}
	return p
}

// Free is the subset of Full available without unlocking extra colors.
var Free = mustParse(
	"#000000", "#3c3c3c", "#787878", "#aaaaaa", "#d2d2d2", "#ffffff",
	"#600018", "#ed1c24", "#ff7f27", "#f6aa09", "#f9dd3b", "#fffabc",
	"#0eb968", "#13e67b", "#87ff5e", "#0c816e", "#10aea6", "#13e1be",
	"#28509e", "#4093e4", "#60f7f2", "#6b50f6", "#99b1fb", "#780c99",
	"#aa38b9", "#e09ff9", "#cb007a", "#ec1f80", "#f38da9", "#684634",
	"#95682a", "#f8b277",
)

// Full is the complete preset palette. It starts with every entry of Free.
var Full = append(Free.Clone(), mustParse(
	"#a50e1e", "#fa8072", "#e45c1a", "#d6b594", "#9c8431", "#c5ad31",
	"#e8d45f", "#4a6b3a", "#5a944a", "#84c573", "#0f799f", "#bbfaf2",
	"#7de3ff", "#4d31b8", "#4a4284", "#7a71c4", "#b5aef1", "#9b5249",
	"#d18078", "#fab6a4", "#dba463", "#7b6352", "#9c846b", "#ffc5a5",
	"#d18051", "#6d643f", "#948c6b", "#cdc59e", "#333941", "#6d758d",
	"#b3b9d1", "#6d4a42",
)...)

var presets = map[string]Palette{
	"free": Free,
	"full": Full,
}

// Lookup returns a copy of the named preset.
func Lookup(name string) (Palette, bool) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Names lists the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
