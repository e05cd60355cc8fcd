package entities

import (
	"fmt"
	"strings"
)

// LocatorStrategy is the way an ElementLocator identifies a DOM element
type LocatorStrategy string

const (
	LocatorClass LocatorStrategy = "class"
	LocatorCSS   LocatorStrategy = "css"
	LocatorID    LocatorStrategy = "id"
	LocatorXPath LocatorStrategy = "xpath"
)

// ElementLocator is an immutable (strategy, value) pair identifying a DOM element
type ElementLocator struct {
	Strategy LocatorStrategy `json:"strategy"`
	Value    string          `json:"value"`
}

// ByClass - creates locator matching elements by CSS class name
func ByClass(name string) ElementLocator {
	return ElementLocator{Strategy: LocatorClass, Value: name}
}

// ByCSS - creates locator matching elements by CSS selector
func ByCSS(selector string) ElementLocator {
	return ElementLocator{Strategy: LocatorCSS, Value: selector}
}

// ParseLocator - parses "strategy=value"; a bare value is treated as a class name
func ParseLocator(s string) (ElementLocator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ElementLocator{}, fmt.Errorf("empty element locator")
	}

	strategy, value, found := strings.Cut(s, "=")
	if !found {
		return ByClass(s), nil
	}

	loc := ElementLocator{
		Strategy: LocatorStrategy(strings.ToLower(strings.TrimSpace(strategy))),
		Value:    strings.TrimSpace(value),
	}
	if !loc.Strategy.known() {
		return ElementLocator{}, fmt.Errorf("unknown locator strategy %q in %q; write CSS selectors containing '=' as css=%s", strategy, s, s)
	}
	if err := loc.Validate(); err != nil {
		return ElementLocator{}, err
	}
	return loc, nil
}

func (s LocatorStrategy) known() bool {
	switch s {
	case LocatorClass, LocatorCSS, LocatorID, LocatorXPath:
		return true
	}
	return false
}

// Validate - checks strategy is known and value is set
func (l ElementLocator) Validate() error {
	if !l.Strategy.known() {
		return fmt.Errorf("unknown locator strategy: %q", l.Strategy)
	}
	if l.Value == "" {
		return fmt.Errorf("locator %q has empty value", l.Strategy)
	}
	if l.Strategy == LocatorClass && strings.ContainsAny(l.Value, " \t") {
		return fmt.Errorf("class locator must name a single class: %q", l.Value)
	}
	return nil
}

// Selector - renders the locator as a CSS (or xpath=) selector string
func (l ElementLocator) Selector() string {
	switch l.Strategy {
	case LocatorClass:
		return "." + l.Value
	case LocatorID:
		return "#" + l.Value
	case LocatorXPath:
		return "xpath=" + l.Value
	default:
		return l.Value
	}
}

func (l ElementLocator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}
