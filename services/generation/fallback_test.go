// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"reflect"
	"testing"
)

func TestFallbackGenerator_KeywordMapping(t *testing.T) {
	f := NewFallbackGenerator(10)

	tests := []struct {
		name     string
		prompt   string
		language string
		want     []string
	}{
		{
			name:     "english keywords in prompt order",
			prompt:   "ocean waves under the moon",
			language: "en",
			want:     []string{"🌊", "🌙"},
		},
		{
			name:     "duplicate symbols collapse",
			prompt:   "sea and ocean and waves",
			language: "en",
			want:     []string{"🌊"},
		},
		{
			name:     "french table",
			prompt:   "la mer et la lune",
			language: "fr",
			want:     []string{"🌊", "🌙"},
		},
		{
			name:     "unknown language falls back to english",
			prompt:   "ocean stars",
			language: "xx",
			want:     []string{"🌊", "⭐"},
		},
		{
			name:     "case and punctuation ignored",
			prompt:   "OCEAN, Waves!",
			language: "en",
			want:     []string{"🌊"},
		},
		{
			name:     "no keywords yields default sequence",
			prompt:   "zzz qqq",
			language: "en",
			want:     defaultSequence,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Generate(tt.prompt, tt.language)
			if !reflect.DeepEqual(got.Sequence, tt.want) {
				t.Errorf("Sequence = %v, want %v", got.Sequence, tt.want)
			}
			if got.Source != SourceFallback {
				t.Errorf("Source = %v, want %v", got.Source, SourceFallback)
			}
			if got.Confidence != FallbackConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, FallbackConfidence)
			}
		})
	}
}

func TestFallbackGenerator_Deterministic(t *testing.T) {
	f := NewFallbackGenerator(10)
	first := f.Generate("ocean fire stars", "en")
	for i := 0; i < 5; i++ {
		again := f.Generate("ocean fire stars", "en")
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestFallbackGenerator_RespectsMaxSymbols(t *testing.T) {
	f := NewFallbackGenerator(2)
	got := f.Generate("ocean fire stars moon flowers", "en")
	if len(got.Sequence) != 2 {
		t.Fatalf("len(Sequence) = %d, want 2", len(got.Sequence))
	}

	// The default sequence is capped too.
	tight := NewFallbackGenerator(1)
	got = tight.Generate("zzz", "en")
	if len(got.Sequence) != 1 {
		t.Errorf("default sequence len = %d, want 1", len(got.Sequence))
	}
}

func TestFallbackGenerator_NeverEmpty(t *testing.T) {
	f := NewFallbackGenerator(10)
	for _, prompt := range []string{"", "   ", "!!!", "xyzzy"} {
		if got := f.Generate(prompt, "en"); len(got.Sequence) == 0 {
			t.Errorf("Generate(%q) returned an empty sequence", prompt)
		}
	}
}
