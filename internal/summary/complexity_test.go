package summary

import "testing"

func TestCyclomatic(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", "", 1},
		{"straight line", "return a + b;", 1},
		{"single if", "if (x) { return 1; }", 2},
		{"if with logical and", "if (x && y) { return 1; }", 3},
		{"if with logical or", "if (x || y) { return 1; }", 3},
		{"loop", "for (let i = 0; i < n; i++) { total += i; }", 2},
		{"while loop", "while (ok) { step(); }", 2},
		{"switch with cases", "switch (k) { case 1: break; case 2: break; }", 4},
		{"try catch", "try { run(); } catch (e) { log(e); }", 2},
		{"ternary", "return x ? 1 : 2;", 2},
		{"optional chaining is not a branch", "return a?.b?.c;", 1},
		{"nullish coalescing short-circuits", "return a ?? b;", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cyclomatic(tt.body); got != tt.want {
				t.Errorf("Cyclomatic(%q) = %d, want %d", tt.body, got, tt.want)
			}
		})
	}
}

// Adding one more branching construct must increase the score by exactly 1.
func TestCyclomaticMonotonic(t *testing.T) {
	base := "if (a) { x(); } for (;;) { y(); }"
	additions := []string{
		" if (b) { z(); }",
		" while (c) { z(); }",
		" try { z(); } catch (e) {}",
		" const v = d ? 1 : 2;",
	}

	baseScore := Cyclomatic(base)
	for _, add := range additions {
		t.Run(add, func(t *testing.T) {
			// catch adds 1; the try keyword itself is not a branch.
			if got := Cyclomatic(base + add); got != baseScore+1 {
				t.Errorf("Cyclomatic(base+%q) = %d, want %d", add, got, baseScore+1)
			}
		})
	}
}

func TestBackfillComplexity(t *testing.T) {
	s := FileSummary{
		Path: "src/app.ts",
		Functions: []FunctionInfo{
			{Name: "scored", Complexity: 7},
			{Name: "withBody", Body: "if (x) { return 1; }"},
			{Name: "bare"},
		},
		Classes: []ClassInfo{
			{Name: "Widget", Methods: []FunctionInfo{{Name: "render", Body: "return x ? a : b;"}}},
		},
	}

	backfillComplexity(&s)

	if got := s.Functions[0].Complexity; got != 7 {
		t.Errorf("scored function overwritten: got %d, want 7", got)
	}
	if got := s.Functions[1].Complexity; got != 2 {
		t.Errorf("body-scored function = %d, want 2", got)
	}
	if got := s.Functions[2].Complexity; got != 1 {
		t.Errorf("bare function = %d, want 1", got)
	}
	if got := s.Classes[0].Methods[0].Complexity; got != 2 {
		t.Errorf("method = %d, want 2", got)
	}
}

func TestMeta(t *testing.T) {
	tests := []struct {
		path string
		name string
		stem string
		ext  string
	}{
		{"src/components/App.tsx", "App.tsx", "App", ".tsx"},
		{"index.ts", "index.ts", "index", ".ts"},
		{"src/types/global.d.ts", "global.d.ts", "global", ".d.ts"},
		{"Makefile", "Makefile", "Makefile", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := FileSummary{Path: tt.path}.Meta()
			if m.Name != tt.name || m.Stem != tt.stem || m.Ext != tt.ext {
				t.Errorf("Meta(%q) = {%q %q %q}, want {%q %q %q}",
					tt.path, m.Name, m.Stem, m.Ext, tt.name, tt.stem, tt.ext)
			}
		})
	}
}
