package domain

import (
	"fmt"
	"testing"
)

func TestHashArticleNormalizes(t *testing.T) {
	t.Parallel()

	base := HashArticle("BlackRock Fund Crosses $2B", "CoinDesk")
	cases := []struct {
		name   string
		title  string
		source string
		same   bool
	}{
		{"identical", "BlackRock Fund Crosses $2B", "CoinDesk", true},
		{"case variant", "blackrock fund crosses $2b", "coindesk", true},
		{"spacing variant", "  BlackRock   Fund Crosses $2B ", "CoinDesk", true},
		{"different source", "BlackRock Fund Crosses $2B", "Decrypt", false},
		{"different title", "BlackRock Fund Crosses $3B", "CoinDesk", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := HashArticle(tc.title, tc.source)
			if (got == base) != tc.same {
				t.Fatalf("hash equality = %v, want %v", got == base, tc.same)
			}
		})
	}
}

func TestRecencyWindowEvictsOldestFirst(t *testing.T) {
	t.Parallel()

	window := NewRecencyWindow(3)
	for i := 0; i < 5; i++ {
		title := fmt.Sprintf("story %d", i)
		window.Append(Article{Hash: HashArticle(title, "src"), Title: title})
	}

	if window.Len() != 3 {
		t.Fatalf("len = %d, want 3", window.Len())
	}
	if window.ContainsHash(HashArticle("story 0", "src")) || window.ContainsHash(HashArticle("story 1", "src")) {
		t.Fatal("oldest entries should have been evicted")
	}
	for i := 2; i < 5; i++ {
		if !window.ContainsHash(HashArticle(fmt.Sprintf("story %d", i), "src")) {
			t.Fatalf("story %d missing from window", i)
		}
	}

	titles := window.Titles()
	want := []string{"story 4", "story 3", "story 2"}
	for i, title := range want {
		if titles[i] != title {
			t.Fatalf("titles[%d] = %q, want %q (most recent first)", i, titles[i], title)
		}
	}
}

func TestRecencyWindowDefaultSize(t *testing.T) {
	t.Parallel()

	window := NewRecencyWindow(0)
	for i := 0; i < 40; i++ {
		window.Append(Article{Hash: fmt.Sprintf("h%d", i)})
	}
	if window.Len() != 15 {
		t.Fatalf("len = %d, want default bound 15", window.Len())
	}
}

func TestCategorize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title   string
		summary string
		want    Category
	}{
		{"Central bank gold reserves hit record", "", CategoryGold},
		{"BlackRock launches tokenized treasury fund", "", CategoryRWA},
		{"Visa announces partnership with custody firm", "", CategoryPartnership},
		{"SEC files lawsuit over unregistered offering", "", CategoryRegulatory},
		{"Quarterly earnings beat expectations", "", CategoryGeneral},
		{"Market update", "institutions expand tokenization pilots", CategoryRWA},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.title, func(t *testing.T) {
			t.Parallel()
			if got := Categorize(tc.title, tc.summary); got != tc.want {
				t.Fatalf("Categorize(%q) = %s, want %s", tc.title, got, tc.want)
			}
		})
	}
}

func TestIsPricePrediction(t *testing.T) {
	t.Parallel()

	if !IsPricePrediction("Bitcoin price prediction for 2027", "") {
		t.Fatal("speculative headline should be flagged")
	}
	if IsPricePrediction("JPMorgan settles tokenized bond trade", "deal closed yesterday") {
		t.Fatal("factual headline should pass")
	}
}
