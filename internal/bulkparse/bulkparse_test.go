package bulkparse

import "testing"

func TestSubjects(t *testing.T) {
	entries, skipped := Subjects("Math: matrices, linear systems ;Portuguese:syntax")
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Name != "Math" {
		t.Fatalf("name = %q", entries[0].Name)
	}
	if len(entries[0].Topics) != 2 || entries[0].Topics[0] != "matrices" || entries[0].Topics[1] != "linear systems" {
		t.Fatalf("topics = %v", entries[0].Topics)
	}
	if entries[1].Name != "Portuguese" || len(entries[1].Topics) != 1 {
		t.Fatalf("second entry = %+v", entries[1])
	}
}

func TestSubjectsSkipsMalformedEntries(t *testing.T) {
	entries, skipped := Subjects("Math:matrices;no-colon-here;:topicless; OnlyName: ;Law:constitutional")
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (got %+v)", len(entries), entries)
	}
	if entries[0].Name != "Math" || entries[1].Name != "Law" {
		t.Fatalf("wrong entries survived: %+v", entries)
	}
	if len(skipped) != 3 {
		t.Fatalf("skipped = %v, want 3 entries reported", skipped)
	}
}

func TestSubjectsEmptyInput(t *testing.T) {
	entries, skipped := Subjects("  ;; ")
	if len(entries) != 0 || len(skipped) != 0 {
		t.Fatalf("entries=%v skipped=%v", entries, skipped)
	}
}

func TestSimuladoResults(t *testing.T) {
	results, skipped := SimuladoResults("Math:25,22,45;Portuguese:20,15,60")
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Subject != "Math" || results[0].QuestionsTotal != 25 ||
		results[0].QuestionsCorrect != 22 || results[0].TimeSpent != 45 {
		t.Fatalf("first result = %+v", results[0])
	}
}

func TestSimuladoResultsSkipsMalformedEntries(t *testing.T) {
	input := "Math:25,22,45;Law:ten,8,30;Short:5,4;Extra:1,1,1,1;Over:5,9,10;Neg:-1,0,5"
	results, skipped := SimuladoResults(input)
	if len(results) != 1 || results[0].Subject != "Math" {
		t.Fatalf("results = %+v, want only Math", results)
	}
	if len(skipped) != 5 {
		t.Fatalf("skipped = %v, want 5 entries reported", skipped)
	}
}

func TestSimuladoResultsFractionalMinutes(t *testing.T) {
	results, skipped := SimuladoResults("Math:10,9,12.5")
	if len(skipped) != 0 || len(results) != 1 {
		t.Fatalf("results=%v skipped=%v", results, skipped)
	}
	if results[0].TimeSpent != 12.5 {
		t.Fatalf("time = %f, want 12.5", results[0].TimeSpent)
	}
}
