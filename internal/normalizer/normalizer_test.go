package normalizer

import "testing"

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Mixed case and extra whitespace",
			input: "  123   MAIN   St  ",
			want:  "123 main st",
		},
		{
			name:  "Keeps address punctuation whitelist",
			input: "450 E. Whittier St. #2-B",
			want:  "450 e. whittier st. #2-b",
		},
		{
			name:  "Strips other punctuation",
			input: "123 Main St, Apt 4 (rear)",
			want:  "123 main st apt 4 rear",
		},
		{
			name:  "Diacritics fold to ascii",
			input: "12 Café Straße",
			want:  "12 cafe strasse",
		},
		{
			name:  "Tabs and newlines collapse",
			input: "123\tMain\nSt",
			want:  "123 main st",
		},
		{
			name:  "Empty input",
			input: "",
			want:  "",
		},
		{
			name:  "Punctuation only reduces to empty",
			input: "!!! ??? ,,,",
			want:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"123 Main St", "  450 E. WHITTIER #2  ", "125 Mian St"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("O'Brien-Smith, Jr."); got != "o brien smith jr" {
		t.Errorf("NormalizeName = %q, want %q", got, "o brien smith jr")
	}
}

func TestStripDiacritics(t *testing.T) {
	if got := StripDiacritics("Hồ Chí Minh"); got != "Ho Chi Minh" {
		t.Errorf("StripDiacritics = %q", got)
	}
}
