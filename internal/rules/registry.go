package rules

import (
	"fmt"
	"slices"
)

// Options carries per-rule settings read from config. Fields a rule does
// not understand are ignored by it.
type Options struct {
	// MergeObjects configures InterfaceExtends. Nil means the default (true).
	MergeObjects *bool
}

// Info describes a rule for listings.
type Info struct {
	Name        string
	Description string
	Fixable     bool
	Options     []string
}

var registry = map[string]func(Options) Rule{
	InterfaceExtendsName: func(opts Options) Rule {
		r := NewInterfaceExtends()
		if opts.MergeObjects != nil {
			r.MergeObjects = *opts.MergeObjects
		}
		return r
	},
	MergedTypeLiteralName: func(Options) Rule {
		return NewMergedTypeLiteral()
	},
}

var ruleOptions = map[string][]string{
	InterfaceExtendsName: {"mergeObjects"},
}

// New builds the named rule with opts applied.
func New(name string, opts Options) (Rule, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", name)
	}
	return build(opts), nil
}

// Known reports whether name is a registered rule.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// AcceptsOption reports whether the named rule understands the option key.
func AcceptsOption(name, option string) bool {
	return slices.Contains(ruleOptions[name], option)
}

// Names returns all rule names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Catalog describes every registered rule, sorted by name.
func Catalog() []Info {
	infos := make([]Info, 0, len(registry))
	for _, name := range Names() {
		r := registry[name](Options{})
		infos = append(infos, Info{
			Name:        name,
			Description: r.Description(),
			Fixable:     true,
			Options:     ruleOptions[name],
		})
	}
	return infos
}
