// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package graph

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Command operations.
const (
	OpAddLabel     = "add-label"
	OpAddNode      = "add-node"
	OpAddReference = "add-reference"
	OpAddComponent = "add-component"
	OpAddOption    = "add-option"
	OpLink         = "link"
	OpSetKey       = "set-key"
	OpSetDatatype  = "set-datatype"
	OpMoveEdge     = "move-edge"
	OpDeleteNode   = "delete-node"
	OpDeleteEdge   = "delete-edge"
)

// Command is one recorded editing event. Keys and datatypes may be given
// in compacted form; they are expanded with the graph's namespace table.
type Command struct {
	Op       string `yaml:"op" json:"op"`
	Node     string `yaml:"node,omitempty" json:"node,omitempty"`
	Edge     string `yaml:"edge,omitempty" json:"edge,omitempty"`
	Target   string `yaml:"target,omitempty" json:"target,omitempty"`
	Kind     string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Key      string `yaml:"key,omitempty" json:"key,omitempty"`
	Datatype string `yaml:"datatype,omitempty" json:"datatype,omitempty"`
}

type commandLog struct {
	Commands []Command `yaml:"commands"`
}

// LoadCommands decodes a YAML command log of the form
//
//	commands:
//	  - op: add-label
//	    key: ex:Person
func LoadCommands(r io.Reader) ([]Command, error) {
	var log commandLog
	if err := yaml.NewDecoder(r).Decode(&log); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode command log: %w", err)
	}
	return log.Commands, nil
}

// SaveCommands encodes a command log as YAML.
func SaveCommands(w io.Writer, cmds []Command) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(commandLog{Commands: cmds}); err != nil {
		return err
	}
	return enc.Close()
}

// Apply performs one command and returns the ids of the elements it
// created, if any.
func (g *Graph) Apply(cmd Command) ([]string, error) {
	key := g.ns.Expand(cmd.Key)
	datatype := g.ns.Expand(cmd.Datatype)

	var created []string
	var err error
	switch cmd.Op {
	case OpAddLabel:
		var label, value string
		label, value, err = g.AddLabel(key)
		created = []string{label, value}
	case OpAddNode:
		var id string
		id, err = g.AddNode(NodeKind(cmd.Kind), datatype)
		created = []string{id}
	case OpAddReference:
		var id string
		id, err = g.AddReference(cmd.Target)
		created = []string{id}
	case OpAddComponent:
		var edge, child string
		edge, child, err = g.AddComponent(cmd.Node, key)
		created = []string{edge, child}
	case OpAddOption:
		var edge, child string
		edge, child, err = g.AddOption(cmd.Node, key)
		created = []string{edge, child}
	case OpLink:
		var edge string
		edge, err = g.Link(cmd.Node, cmd.Target, key)
		created = []string{edge}
	case OpSetKey:
		id := cmd.Node
		if id == "" {
			id = cmd.Edge
		}
		err = g.SetKey(id, key)
	case OpSetDatatype:
		err = g.SetDatatype(cmd.Node, datatype)
	case OpMoveEdge:
		err = g.MoveEdge(cmd.Edge, cmd.Target)
	case OpDeleteNode:
		err = g.DeleteNode(cmd.Node)
	case OpDeleteEdge:
		err = g.DeleteEdge(cmd.Edge)
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrInvalidGraph, cmd.Op)
	}
	if err != nil {
		return nil, err
	}

	g.log.V(2).Info("applied command", "op", cmd.Op, "created", created)
	return created, nil
}

// Replay applies commands in order and stops at the first rejected one.
// The graph keeps the effect of every command before it.
func (g *Graph) Replay(cmds []Command) error {
	for i, cmd := range cmds {
		if _, err := g.Apply(cmd); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, cmd.Op, err)
		}
	}
	return nil
}
