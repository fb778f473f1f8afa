// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package graph

import "unicode/utf8"

const (
	charWidth  = 7.2
	lineHeight = 20
)

// Display is the renderer-facing data of a node: its text and box size.
type Display struct {
	Text   string  `json:"text,omitempty" yaml:"text,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

func labelDisplay(text string) Display {
	return Display{
		Text:   text,
		Width:  max(charWidth*float64(utf8.RuneCountInString(text))+12, 20),
		Height: lineHeight,
	}
}

func literalDisplay(text string) Display {
	return Display{
		Text:   text,
		Width:  charWidth*float64(utf8.RuneCountInString(text)) + 8,
		Height: lineHeight,
	}
}

// Element is a renderer-neutral description of a node or an edge.
type Element struct {
	Group   string      `json:"group" yaml:"group"`
	Classes string      `json:"classes" yaml:"classes"`
	Data    ElementData `json:"data" yaml:"data"`
}

// ElementData carries the attributes of an Element.
type ElementData struct {
	ID       string  `json:"id" yaml:"id"`
	Source   string  `json:"source,omitempty" yaml:"source,omitempty"`
	Target   string  `json:"target,omitempty" yaml:"target,omitempty"`
	Key      string  `json:"key,omitempty" yaml:"key,omitempty"`
	Datatype string  `json:"datatype,omitempty" yaml:"datatype,omitempty"`
	Width    float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Elements lists every node then every edge, each in creation order. Keys
// and datatypes are given in their compacted form.
func (g *Graph) Elements() []Element {
	elements := make([]Element, 0, len(g.nodes)+len(g.edges))
	for _, n := range g.Nodes() {
		data := ElementData{ID: n.ID, Width: n.Display.Width, Height: n.Display.Height}
		switch n.Kind {
		case NodeLabel:
			data.Key = n.Display.Text
		case NodeLiteral:
			data.Datatype = n.Display.Text
		}
		elements = append(elements, Element{Group: "nodes", Classes: string(n.Kind), Data: data})
	}
	for _, e := range g.Edges() {
		data := ElementData{ID: e.ID, Source: e.Source, Target: e.Target}
		if e.Kind.Keyed() {
			data.Key = g.ns.Compact(e.Key)
		}
		elements = append(elements, Element{Group: "edges", Classes: string(e.Kind), Data: data})
	}
	return elements
}
