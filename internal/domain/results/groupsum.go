package results

import (
	"fmt"
	"math"
	"strconv"
)

// groupSumLimit is the threshold above which a must-sum-to-100 group is
// flagged. The slack absorbs float noise from values like 33.3+33.3+33.4.
const groupSumLimit = 100.0001

// groupSum totals the named members' current values within a test. Members
// whose value does not parse as a number contribute zero.
func (t *TestEntry) groupSum(members []string) float64 {
	var sum float64
	for _, name := range members {
		p := t.find(name)
		if p == nil {
			continue
		}
		if v, err := strconv.ParseFloat(p.Value, 64); err == nil {
			sum += v
		}
	}
	return sum
}

// CheckGroupSums evaluates every must-sum-to-100 subheading in the session.
// The result maps "<testIndex>-<subheadingIndex>" to whether that group is
// over the limit; groups at or under it report false.
func (s *EntrySession) CheckGroupSums() map[string]bool {
	flags := map[string]bool{}
	for ti := range s.Tests {
		t := &s.Tests[ti]
		if t.Outsourced {
			continue
		}
		for si, sh := range t.SubHeadings {
			if !sh.MustSumTo100 {
				continue
			}
			tag := fmt.Sprintf("%d-%d", ti, si)
			flags[tag] = t.groupSum(sh.Parameters) > groupSumLimit
		}
	}
	return flags
}

// FillRemainder sets the last member of a must-sum-to-100 subheading to the
// rounded difference between 100 and the sum of the other members, and
// returns the value written.
func (s *EntrySession) FillRemainder(testIdx, subIdx int) (int, error) {
	if testIdx < 0 || testIdx >= len(s.Tests) {
		return 0, fmt.Errorf("test index %d out of range", testIdx)
	}
	t := &s.Tests[testIdx]
	if subIdx < 0 || subIdx >= len(t.SubHeadings) {
		return 0, fmt.Errorf("subheading index %d out of range", subIdx)
	}
	sh := t.SubHeadings[subIdx]
	if len(sh.Parameters) == 0 {
		return 0, fmt.Errorf("subheading %q has no members", sh.Title)
	}
	last := t.find(sh.Parameters[len(sh.Parameters)-1])
	if last == nil {
		return 0, fmt.Errorf("no parameter %q in test %q", sh.Parameters[len(sh.Parameters)-1], t.TestName)
	}
	partial := t.groupSum(sh.Parameters[:len(sh.Parameters)-1])
	rem := int(math.Round(100 - partial))
	last.Value = strconv.Itoa(rem)
	return rem, nil
}
