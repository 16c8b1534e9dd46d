package repository

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestKeywordRepository_LookupMatchesSubstring(t *testing.T) {
	keywordFile := writeTempCSV(t, "keywords.csv",
		"keyword,response,helpline\n"+
			"suicidal,Please reach out for help.,988\n"+
			"panic attack,Try to breathe slowly.,111\n")
	offensiveFile := writeTempCSV(t, "offensive.csv", "offensive_term\nslur\n")

	repo := NewKeywordRepository(keywordFile, offensiveFile)

	entry, ok := repo.Lookup("I have been feeling SUICIDAL lately")
	if !ok {
		t.Fatalf("expected a keyword match")
	}
	if entry.Keyword != "suicidal" {
		t.Fatalf("unexpected keyword: %q", entry.Keyword)
	}
	if entry.Helpline != "988" {
		t.Fatalf("unexpected helpline: %q", entry.Helpline)
	}

	if _, ok := repo.Lookup("just a normal day"); ok {
		t.Fatalf("did not expect a match")
	}
}

func TestKeywordRepository_FirstLoadedKeywordWins(t *testing.T) {
	// 两个关键词都出现在输入中时，按加载顺序取先加载的那个
	keywordFile := writeTempCSV(t, "keywords.csv",
		"keyword,response,helpline\n"+
			"abuse,Abuse response,1\n"+
			"panic,Panic response,2\n")
	repo := NewKeywordRepository(keywordFile, "")

	entry, ok := repo.Lookup("panic after abuse")
	if !ok {
		t.Fatalf("expected a keyword match")
	}
	if entry.Keyword != "abuse" {
		t.Fatalf("expected first loaded keyword to win, got %q", entry.Keyword)
	}
}

func TestKeywordRepository_DropsIncompleteRowsAndDuplicates(t *testing.T) {
	keywordFile := writeTempCSV(t, "keywords.csv",
		"keyword,response,helpline\n"+
			"lonely,First response,100\n"+
			",missing keyword,200\n"+
			"no helpline,missing helpline,\n"+
			"LONELY,Duplicate response,300\n")
	repo := NewKeywordRepository(keywordFile, "")

	if got := repo.KeywordCount(); got != 1 {
		t.Fatalf("expected 1 keyword after filtering, got %d", got)
	}

	entry, ok := repo.Lookup("i feel lonely")
	if !ok {
		t.Fatalf("expected a keyword match")
	}
	// 重复关键词保留首次出现的行
	if entry.Response != "First response" {
		t.Fatalf("expected first occurrence to win, got %q", entry.Response)
	}
}

func TestKeywordRepository_MissingFilesDegradeToEmpty(t *testing.T) {
	repo := NewKeywordRepository("no-such-file.csv", "also-missing.csv")

	if repo.KeywordCount() != 0 || repo.OffensiveTermCount() != 0 {
		t.Fatalf("expected empty tables, got %d keywords, %d terms",
			repo.KeywordCount(), repo.OffensiveTermCount())
	}
	if _, ok := repo.Lookup("anything"); ok {
		t.Fatalf("empty table must not match")
	}
	if repo.ContainsOffensiveTerm("anything") {
		t.Fatalf("empty table must not match offensive terms")
	}
}

func TestKeywordRepository_OffensiveTerms(t *testing.T) {
	offensiveFile := writeTempCSV(t, "offensive.csv",
		"offensive_term\n"+
			"slur\n"+
			"SLUR\n"+
			"insult\n")
	repo := NewKeywordRepository("", offensiveFile)

	if got := repo.OffensiveTermCount(); got != 2 {
		t.Fatalf("expected 2 deduplicated terms, got %d", got)
	}
	if !repo.ContainsOffensiveTerm("that was an Insult") {
		t.Fatalf("expected case-insensitive match")
	}
	if repo.ContainsOffensiveTerm("a kind sentence") {
		t.Fatalf("did not expect a match")
	}
}
