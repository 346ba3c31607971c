package textnorm

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "hello world", want: "hello world"},
		{name: "collapse runs", in: "a  b\t\tc", want: "a b c"},
		{name: "newlines", in: "line one\nline two\n\nline three", want: "line one line two line three"},
		{name: "trim", in: "  padded  ", want: "padded"},
		{name: "korean", in: "트럼프  대통령이\n발표했다", want: "트럼프 대통령이 발표했다"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := "  a  b\nc  "

	once := Normalize(in)
	twice := Normalize(once)

	if once != twice {
		t.Errorf("not idempotent: %q != %q", once, twice)
	}
}

func TestNormalizeKoreanPhrase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"한·미 정상회담", "한미정상회담"},
		{"한미 정상회담", "한미정상회담"},
		{"North-Korea", "northkorea"},
		{"A B/C", "abc"},
	}

	for _, tt := range tests {
		if got := NormalizeKoreanPhrase(tt.in); got != tt.want {
			t.Errorf("NormalizeKoreanPhrase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainsKorean(t *testing.T) {
	if !ContainsKorean("트럼프 speech") {
		t.Error("expected Korean detected")
	}

	if ContainsKorean("plain english") {
		t.Error("expected no Korean")
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "single",
			in:   "One sentence only.",
			want: []string{"One sentence only."},
		},
		{
			name: "two english",
			in:   "First here. Second there.",
			want: []string{"First here.", "Second there."},
		},
		{
			name: "korean mixed",
			in:   "발표가 있었다. 이후 반응이 나왔다.",
			want: []string{"발표가 있었다.", "이후 반응이 나왔다."},
		},
		{
			name: "no split inside quote",
			in:   `He said "stop. now." and left. Then silence.`,
			want: []string{`He said "stop. now." and left.`, "Then silence."},
		},
		{
			name: "abbreviation-like digits",
			in:   "Rates hit 3.5 percent today. Markets moved.",
			want: []string{"Rates hit 3.5 percent today.", "Markets moved."},
		},
		{
			name: "contractions split normally",
			in:   "We don't want war today. That's absolutely clear to everyone.",
			want: []string{"We don't want war today.", "That's absolutely clear to everyone."},
		},
		{
			name: "possessive before a boundary",
			in:   "The president's remarks ended. Reporters left the room.",
			want: []string{"The president's remarks ended.", "Reporters left the room."},
		},
		{
			name: "single-quoted span still held together",
			in:   "He said 'stop. now.' and left. Then silence.",
			want: []string{"He said 'stop. now.' and left.", "Then silence."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)

			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitSnippetSentences_MinLength(t *testing.T) {
	in := "Short. This sentence is clearly long enough to keep around."

	got := SplitSnippetSentences(in, false)

	if len(got) != 1 {
		t.Fatalf("got %d sentences %q, want 1", len(got), got)
	}
}
