// Package scene builds ready-to-run wave configurations: named presets that
// place sources and paint a medium, scaled to the requested grid.
package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"wavelab/internal/wave"
)

// ErrUnknownScene is returned by Build for names that were never registered.
var ErrUnknownScene = errors.New("unknown scene")

// Scene is a configured simulation plus the presentation hints that go with
// it.
type Scene struct {
	Name   string
	Title  string
	Config wave.Config
	Render wave.RenderMode
}

// Builder constructs a scene from the shared parameters.
type Builder func(p Params) Scene

type entry struct {
	title string
	build Builder
}

var scenes = map[string]entry{}

// Register adds a scene builder under name. Registering a name twice keeps
// the last builder.
func Register(name, title string, b Builder) {
	if name == "" || b == nil {
		return
	}
	scenes[name] = entry{title: title, build: b}
}

// Names lists the registered scenes in lexical order.
func Names() []string {
	return slices.Sorted(maps.Keys(scenes))
}

// Title returns the one-line description of a registered scene.
func Title(name string) string {
	return scenes[name].title
}

// Build constructs the named scene and validates its configuration.
func Build(name string, p Params) (Scene, error) {
	e, ok := scenes[name]
	if !ok {
		return Scene{}, fmt.Errorf("%q: %w", name, ErrUnknownScene)
	}
	s := e.build(p)
	s.Name = name
	if s.Title == "" {
		s.Title = e.title
	}
	if err := s.Config.Validate(); err != nil {
		return Scene{}, fmt.Errorf("scene %s: %w", name, err)
	}
	return s, nil
}
