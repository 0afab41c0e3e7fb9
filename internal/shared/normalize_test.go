package shared

import "testing"

func TestSlugify(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "simple", in: "Yellow", want: "yellow"},
		{name: "spaces become hyphens", in: "Fix You", want: "fix-you"},
		{name: "accents folded", in: "Beyoncé Première", want: "beyonce-premiere"},
		{name: "punctuation dropped", in: "Don't Stop Me Now!", want: "dont-stop-me-now"},
		{name: "repeated separators collapse", in: "A  --  B", want: "a-b"},
		{name: "leading and trailing trimmed", in: " (Intro) ", want: "intro"},
		{name: "digits kept", in: "Track 99", want: "track-99"},
		{name: "non latin dropped", in: "夜空 Night Sky", want: "night-sky"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	in := "Déjà Vu (feat. Someone)"
	first := Slugify(in)
	for i := 0; i < 5; i++ {
		if got := Slugify(in); got != first {
			t.Fatalf("Slugify not deterministic: %q then %q", first, got)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "YELLOW", want: "yellow"},
		{name: "trim", in: "  Coldplay  ", want: "coldplay"},
		{name: "interior whitespace preserved", in: "The  Beatles", want: "the  beatles"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.in); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSongKey(t *testing.T) {
	if got, want := SongKey(" Yellow ", "COLDPLAY"), "yellow|coldplay"; got != want {
		t.Errorf("SongKey() = %q, want %q", got, want)
	}
}
