package tester

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// TestResult is one fixture's outcome.
type TestResult struct {
	FixturePath string
	Error       error
	Diffs       []string
}

func (r *TestResult) String() string {
	if r.Error != nil {
		msg := fmt.Sprintf("Failed %v: %v", r.FixturePath, r.Error)
		if len(r.Diffs) == 0 {
			return rosed.Edit(msg).Wrap(100).String()
		}
		data := make([][]string, len(r.Diffs))
		for i, d := range r.Diffs {
			data[i] = []string{d}
		}
		table := rosed.Edit("").
			InsertTableOpts(0, data, 96, rosed.Options{
				NoTrailingLineSeparators: true,
			}).
			String()
		return rosed.Edit(msg).Wrap(100).String() + "\n" + table
	}
	return fmt.Sprintf("Passed %v", r.FixturePath)
}

// Summary reports how many of results passed.
func Summary(results []*TestResult) (passed, failed int) {
	for _, r := range results {
		if r.Error == nil {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
