// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"strings"
	"unicode"

	"github.com/glyphloom/glyphloom/pkg/validation"
)

// defaultSequence is returned when no prompt keyword matches.
// Guaranteed non-empty by construction, so fallback generation can never
// come back empty-handed.
var defaultSequence = []string{"✨", "🎨"}

// keywordTables maps language code to keyword→symbol lookup tables.
//
// Tables are lowercase-keyed; lookups happen on lowercased prompt tokens.
var keywordTables = map[string]map[string]string{
	"en": {
		"ocean": "🌊", "sea": "🌊", "wave": "🌊", "waves": "🌊",
		"water": "💧", "rain": "🌧️", "cloud": "☁️", "clouds": "☁️",
		"storm": "⛈️", "rainbow": "🌈", "snow": "❄️", "winter": "❄️",
		"sun": "☀️", "sunny": "☀️", "summer": "☀️",
		"moon": "🌙", "night": "🌙", "star": "⭐", "stars": "⭐",
		"sky": "🌌", "earth": "🌍", "world": "🌍",
		"love": "❤️", "heart": "❤️", "hearts": "❤️", "blue": "💙",
		"sparkle": "✨", "magic": "✨", "fire": "🔥", "flame": "🔥",
		"flower": "🌸", "flowers": "🌸", "bloom": "🌸",
		"tree": "🌳", "trees": "🌳", "forest": "🌳", "leaf": "🍃",
		"mountain": "⛰️", "mountains": "⛰️",
		"music": "🎵", "song": "🎵", "dance": "💃",
		"happy": "😊", "joy": "😊", "smile": "😊",
		"bird": "🐦", "birds": "🐦", "fish": "🐟", "cat": "🐱", "dog": "🐶",
		"butterfly": "🦋", "home": "🏠", "house": "🏠",
	},
	"fr": {
		"mer": "🌊", "océan": "🌊", "vague": "🌊", "vagues": "🌊",
		"eau": "💧", "pluie": "🌧️", "nuage": "☁️", "nuages": "☁️",
		"neige": "❄️", "hiver": "❄️", "soleil": "☀️", "été": "☀️",
		"lune": "🌙", "nuit": "🌙", "étoile": "⭐", "étoiles": "⭐",
		"terre": "🌍", "monde": "🌍",
		"amour": "❤️", "coeur": "❤️", "cœur": "❤️", "bleu": "💙",
		"magie": "✨", "feu": "🔥", "flamme": "🔥",
		"fleur": "🌸", "fleurs": "🌸",
		"arbre": "🌳", "arbres": "🌳", "forêt": "🌳",
		"montagne": "⛰️", "montagnes": "⛰️",
		"musique": "🎵", "chanson": "🎵",
		"oiseau": "🐦", "oiseaux": "🐦", "poisson": "🐟",
		"chat": "🐱", "chien": "🐶", "papillon": "🦋", "maison": "🏠",
	},
}

// FallbackGenerator is the deterministic offline keyword-to-symbol mapper.
//
// It is pure: no I/O, no randomness and no state beyond its static lookup
// tables, so it always succeeds and always yields the same sequence for
// the same prompt. The orchestrator routes to it whenever the upstream
// path is unavailable or rate-limited.
type FallbackGenerator struct {
	maxSymbols int
}

// NewFallbackGenerator creates a fallback mapper.
//
// A non-positive maxSymbols applies validation.DefaultMaxSequenceLength.
func NewFallbackGenerator(maxSymbols int) *FallbackGenerator {
	if maxSymbols <= 0 {
		maxSymbols = validation.DefaultMaxSequenceLength
	}
	return &FallbackGenerator{maxSymbols: maxSymbols}
}

// Generate maps prompt keywords to symbols.
//
// Tokens are matched in prompt order against the language's table
// (unknown languages fall back to English); each matched symbol appears
// once, in first-match order, capped at the configured maximum. A prompt
// with no recognized keyword yields the guaranteed default sequence.
func (f *FallbackGenerator) Generate(prompt, language string) *Result {
	table, ok := keywordTables[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		table = keywordTables[DefaultLanguage]
	}

	var (
		sequence []string
		matched  []string
		seen     = make(map[string]bool)
	)
	for _, token := range tokenize(prompt) {
		symbol, ok := table[token]
		if !ok || seen[symbol] {
			continue
		}
		seen[symbol] = true
		sequence = append(sequence, symbol)
		matched = append(matched, token)
		if len(sequence) == f.maxSymbols {
			break
		}
	}

	name := "Offline pattern"
	rationale := "No known keywords; used the default offline mapping."
	if len(sequence) == 0 {
		sequence = append(sequence, defaultSequence...)
		if len(sequence) > f.maxSymbols {
			sequence = sequence[:f.maxSymbols]
		}
	} else {
		name = strings.Join(matched, " ")
		rationale = "Mapped keywords offline: " + strings.Join(matched, ", ")
	}

	return &Result{
		Sequence:   sequence,
		Rationale:  rationale,
		Confidence: FallbackConfidence,
		Name:       name,
		Source:     SourceFallback,
	}
}

// tokenize splits a prompt into lowercase word tokens.
func tokenize(prompt string) []string {
	return strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
