package term

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Protein Kinase":       "protein kinase",
		"  protein   kinase\t": "protein kinase",
		"T-cell":               "t-cell",
		"":                     "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWords(t *testing.T) {
	words := Words("Human  T cell")
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[0] != "human" || words[2] != "cell" {
		t.Errorf("unexpected words %v", words)
	}
}
