// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/glyphloom/glyphloom/pkg/validation"
)

// Intent identifies a parsed user command. The capture layer (voice or
// text) produces these; this package only consumes them.
type Intent string

const (
	// IntentAddSymbol appends one symbol (parameter "symbol") to the
	// session sequence.
	IntentAddSymbol Intent = "add_symbol"

	// IntentGenerate replaces the sequence with a generated one for the
	// prompt in parameter "prompt" (optional "language").
	IntentGenerate Intent = "generate"

	// IntentSave persists the current sequence under parameter "name".
	IntentSave Intent = "save"

	// IntentClear empties the sequence. Reversible with IntentUndo.
	IntentClear Intent = "clear"

	// IntentUndo restores the sequence from before the last mutation.
	IntentUndo Intent = "undo"
)

// MinCommandConfidence is the floor below which a parsed command is
// rejected rather than acted on.
const MinCommandConfidence = 0.5

// Command is a parsed user intent flowing through the dispatcher. All
// command handling goes through Dispatcher.Dispatch so ordering and
// cancellation stay auditable in one place, instead of being spread over
// ad hoc callbacks.
type Command struct {
	Intent     Intent            `json:"intent"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Confidence float64           `json:"confidence"`
}

// CommandOutcome reports the session state after a dispatched command.
type CommandOutcome struct {
	Sequence []string `json:"sequence"`
	Name     string   `json:"name,omitempty"`
	Message  string   `json:"message,omitempty"`

	// Generation carries the orchestrator result for generate commands.
	Generation *Result `json:"generation,omitempty"`
}

// Persister stores a named symbol sequence. Storage itself lives outside
// this package; callers supply whatever backend they want.
type Persister interface {
	Save(ctx context.Context, name string, sequence []string) error
}

// SequenceGenerator is the slice of Orchestrator the dispatcher needs.
type SequenceGenerator interface {
	Generate(ctx context.Context, prompt, language string) (*Result, error)
}

// Session holds the mutable sequence state a dispatcher drives: the
// current symbols, a bounded undo history, and the working name.
type Session struct {
	mu       sync.Mutex
	sequence []string
	history  [][]string
	name     string

	maxSymbols int
}

// maxUndoDepth bounds the undo history per session.
const maxUndoDepth = 20

// NewSession returns an empty session. maxSymbols <= 0 applies the
// package default.
func NewSession(maxSymbols int) *Session {
	if maxSymbols <= 0 {
		maxSymbols = validation.DefaultMaxSequenceLength
	}
	return &Session{maxSymbols: maxSymbols}
}

// Sequence returns a copy of the current symbol sequence.
func (s *Session) Sequence() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sequence...)
}

// snapshot pushes the current sequence onto the undo history.
// Caller must hold s.mu.
func (s *Session) snapshot() {
	prev := append([]string(nil), s.sequence...)
	s.history = append(s.history, prev)
	if len(s.history) > maxUndoDepth {
		s.history = s.history[1:]
	}
}

// Dispatcher routes parsed commands to session mutations. One dispatcher
// serves one session; construct with NewDispatcher and inject where
// needed.
type Dispatcher struct {
	session   *Session
	generator SequenceGenerator
	persister Persister
}

// NewDispatcher wires a dispatcher over session. generator and persister
// may be nil; the corresponding intents then fail with *ValidationError.
func NewDispatcher(session *Session, generator SequenceGenerator, persister Persister) *Dispatcher {
	return &Dispatcher{
		session:   session,
		generator: generator,
		persister: persister,
	}
}

// Dispatch executes cmd against the session and returns the resulting
// state. Commands below MinCommandConfidence are rejected so a garbled
// voice parse cannot silently mutate the pattern.
//
// Only *ValidationError is returned for caller mistakes; generate
// commands inherit the orchestrator's always-succeeds contract.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (*CommandOutcome, error) {
	if cmd.Confidence < MinCommandConfidence {
		return nil, &ValidationError{
			Field:  "confidence",
			Reason: fmt.Sprintf("%.2f is below the minimum of %.2f", cmd.Confidence, MinCommandConfidence),
		}
	}

	slog.Debug("dispatching command", "intent", cmd.Intent, "confidence", cmd.Confidence)

	switch cmd.Intent {
	case IntentAddSymbol:
		return d.addSymbol(cmd)
	case IntentGenerate:
		return d.generate(ctx, cmd)
	case IntentSave:
		return d.save(ctx, cmd)
	case IntentClear:
		return d.clear()
	case IntentUndo:
		return d.undo()
	default:
		return nil, &ValidationError{
			Field:  "intent",
			Reason: fmt.Sprintf("unknown intent %q", cmd.Intent),
		}
	}
}

func (d *Dispatcher) addSymbol(cmd Command) (*CommandOutcome, error) {
	symbol, err := validation.SanitizeSymbol(cmd.Parameters["symbol"])
	if err != nil {
		return nil, &ValidationError{Field: "symbol", Reason: err.Error()}
	}

	s := d.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sequence) >= s.maxSymbols {
		return nil, &ValidationError{
			Field:  "symbol",
			Reason: fmt.Sprintf("sequence is full at %d symbols", s.maxSymbols),
		}
	}
	s.snapshot()
	s.sequence = append(s.sequence, symbol)
	return d.outcomeLocked(fmt.Sprintf("added %s", symbol)), nil
}

func (d *Dispatcher) generate(ctx context.Context, cmd Command) (*CommandOutcome, error) {
	if d.generator == nil {
		return nil, &ValidationError{Field: "intent", Reason: "generation is not available"}
	}

	result, err := d.generator.Generate(ctx, cmd.Parameters["prompt"], cmd.Parameters["language"])
	if err != nil {
		return nil, err
	}

	s := d.session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot()
	s.sequence = append([]string(nil), result.Sequence...)
	if result.Name != "" {
		s.name = result.Name
	}
	out := d.outcomeLocked(fmt.Sprintf("generated %d symbols", len(result.Sequence)))
	out.Generation = result
	return out, nil
}

func (d *Dispatcher) save(ctx context.Context, cmd Command) (*CommandOutcome, error) {
	if d.persister == nil {
		return nil, &ValidationError{Field: "intent", Reason: "saving is not available"}
	}

	s := d.session
	s.mu.Lock()
	if len(s.sequence) == 0 {
		s.mu.Unlock()
		return nil, &ValidationError{Field: "sequence", Reason: "nothing to save"}
	}
	if name := cmd.Parameters["name"]; name != "" {
		s.name = name
	}
	if s.name == "" {
		s.name = "Untitled pattern"
	}
	name := s.name
	sequence := append([]string(nil), s.sequence...)
	s.mu.Unlock()

	if err := d.persister.Save(ctx, name, sequence); err != nil {
		return nil, fmt.Errorf("saving pattern %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return d.outcomeLocked(fmt.Sprintf("saved %q", name)), nil
}

func (d *Dispatcher) clear() (*CommandOutcome, error) {
	s := d.session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot()
	s.sequence = nil
	return d.outcomeLocked("cleared"), nil
}

func (d *Dispatcher) undo() (*CommandOutcome, error) {
	s := d.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return nil, &ValidationError{Field: "intent", Reason: "nothing to undo"}
	}
	last := len(s.history) - 1
	s.sequence = s.history[last]
	s.history = s.history[:last]
	return d.outcomeLocked("undone"), nil
}

// outcomeLocked builds an outcome from the current session state.
// Caller must hold d.session.mu.
func (d *Dispatcher) outcomeLocked(message string) *CommandOutcome {
	return &CommandOutcome{
		Sequence: append([]string(nil), d.session.sequence...),
		Name:     d.session.name,
		Message:  message,
	}
}
