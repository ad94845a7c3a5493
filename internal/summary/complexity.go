package summary

import "regexp"

// branchWords are the branching constructs that each add one to a
// function's cyclomatic complexity.
var branchWords = regexp.MustCompile(`\b(if|for|while|switch|case|catch)\b`)

// Cyclomatic scores a function body: 1 for the function itself, plus one
// per branching construct, plus one per short-circuit logical operator.
// Extractors that do not score complexity themselves rely on this exact
// rule, and tests assert its monotonicity (one more branch = +1).
func Cyclomatic(body string) int {
	score := 1 + len(branchWords.FindAllStringIndex(body, -1))

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '&':
			if i+1 < len(body) && body[i+1] == '&' {
				score++
				i++
			}
		case '|':
			if i+1 < len(body) && body[i+1] == '|' {
				score++
				i++
			}
		case '?':
			if i+1 < len(body) {
				switch body[i+1] {
				case '.':
					// Optional chaining is not a branch.
					i++
					continue
				case '?':
					// Nullish coalescing short-circuits.
					score++
					i++
					continue
				}
			}
			// Ternary.
			score++
		}
	}

	return score
}

// backfillComplexity fills in missing complexity scores on a loaded
// summary. Functions with neither a score nor a body default to 1.
func backfillComplexity(s *FileSummary) {
	for i := range s.Functions {
		fillFunction(&s.Functions[i])
	}
	for i := range s.Classes {
		for j := range s.Classes[i].Methods {
			fillFunction(&s.Classes[i].Methods[j])
		}
	}
}

func fillFunction(f *FunctionInfo) {
	if f.Complexity > 0 {
		return
	}
	if f.Body != "" {
		f.Complexity = Cyclomatic(f.Body)
		return
	}
	f.Complexity = 1
}
