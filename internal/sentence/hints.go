package sentence

import "fmt"

// GenerateHints returns at most one hint for building target. With nothing
// submitted yet it describes the overall pattern; afterwards it reveals only
// the next expected word.
func (v *Validator) GenerateHints(target, attemptSoFar []string) []string {
	if len(attemptSoFar) == 0 {
		targetWords := words(v.resolve(target))
		if len(targetWords) == 0 {
			return nil
		}
		return []string{v.skeletonHint(targetWords)}
	}

	if len(attemptSoFar) >= len(target) {
		return nil
	}

	next, ok := v.vocab.Word(target[len(attemptSoFar)])
	if !ok {
		return nil
	}
	return []string{fmt.Sprintf("Next word (%s): %q.", next.Type, next.Text)}
}
