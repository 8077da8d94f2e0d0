package domain

import (
	"log/slog"
	"regexp"
	"strings"

	m "github.com/mouse-blink/mend/internal/model"
)

// Matching thresholds. These are deliberately named so boundary behavior can
// be tested on its own rather than hidden in expressions.
const (
	// maxCandidates caps how many positions a single tier may report.
	maxCandidates = 20

	// wholeFileLineRatio: a before-text covering at least this share of the
	// file's lines is treated as a whole-file rewrite.
	wholeFileLineRatio = 0.70

	// alreadyAppliedRatio and alreadyAppliedMinLines drive the duplicate
	// guard: a window matching at least this share of the after-text's
	// non-blank lines means the change is already present.
	alreadyAppliedRatio    = 0.90
	alreadyAppliedMinLines = 5

	// matchWindowLines and smallWindowLines size the sliding windows of the
	// normalized line-window tiers.
	matchWindowLines = 5
	smallWindowLines = 3

	// twoLineFirstMinLen and twoLineSecondMinLen keep the two-line tier from
	// firing on trivial lines.
	twoLineFirstMinLen  = 20
	twoLineSecondMinLen = 10

	// literalMinLen is the minimum length of a quoted or numeric literal
	// considered distinctive enough to anchor a match.
	literalMinLen = 5

	// literalContextLen is how many leading characters of the folded first
	// line a literal-bearing line must loosely contain.
	literalContextLen = 30

	// firstLineExactMinLen and firstLinePrefixMinLen gate the single-line
	// tiers; firstLinePrefixRatio is the prefix share compared.
	firstLineExactMinLen  = 30
	firstLinePrefixMinLen = 20
	firstLinePrefixRatio  = 0.60
)

// DefaultTerminator is the statement that conventionally closes a program in
// the sources this tool targets. The append tier inserts new code right
// after the last such line.
const DefaultTerminator = "END;"

const byteOrderMark = "\uFEFF"

// Locator finds plausible positions for a proposed (before, after) snippet
// pair inside the current file content. It never fails: when no textual
// match exists it reports a single append candidate at the end of the file.
// The only empty result is the duplicate guard deciding the change is
// already present.
type Locator interface {
	// Locate runs the matching tiers in confidence order. FirstMatch stops
	// at the strongest single candidate; EnumerateAll reports every
	// position found by the first tier that yields one.
	Locate(current, before, after string, mode m.MatchMode) []m.Candidate

	// Relocate re-derives a position after the file diverged from the
	// suggestion's base text. Only the normalized line tiers run; exact
	// matching already failed when the suggestion was created or is
	// invalidated by the divergence itself.
	Relocate(current, before string) (m.Candidate, bool)
}

type locator struct {
	terminator string
}

// NewLocator creates a Locator. The terminator token configures where the
// append tier inserts when the file has a recognizable closing line.
func NewLocator(terminator string) Locator {
	if strings.TrimSpace(terminator) == "" {
		terminator = DefaultTerminator
	}

	return &locator{terminator: terminator}
}

type tierSearch func(current, before string) []m.Candidate

func (l *locator) Locate(current, before, after string, mode m.MatchMode) []m.Candidate {
	current = strings.TrimPrefix(current, byteOrderMark)
	before = strings.TrimPrefix(before, byteOrderMark)

	if alreadyApplied(current, after) {
		slog.Debug("proposed change already present, dropping", "beforeLines", lineCount(before))
		return nil
	}

	if cands := locateWholeFile(current, before); len(cands) > 0 {
		return cands
	}

	searches := []tierSearch{
		locateExact,
		locateTrimmed,
		locateLargeWindow,
		locateSmallWindow,
		locateTwoLine,
		locateLiteral,
		locateFirstLine,
		locateFirstLinePrefix,
	}

	for _, search := range searches {
		cands := search(current, before)
		if len(cands) == 0 {
			continue
		}

		slog.Debug("located candidates", "tier", cands[0].Tier.String(), "count", len(cands))

		if mode == m.FirstMatch {
			return cands[:1]
		}

		return cands
	}

	return []m.Candidate{l.appendCandidate(current)}
}

func (l *locator) Relocate(current, before string) (m.Candidate, bool) {
	current = strings.TrimPrefix(current, byteOrderMark)

	searches := []tierSearch{
		locateLargeWindow,
		locateSmallWindow,
		locateTwoLine,
		locateLiteral,
		locateFirstLine,
		locateFirstLinePrefix,
	}

	for _, search := range searches {
		if cands := search(current, before); len(cands) > 0 {
			return cands[0], true
		}
	}

	return m.Candidate{}, false
}

// alreadyApplied is the duplicate guard: when the after-text is already part
// of the current content the suggestion has nothing left to do. A
// coincidental textual match trips this too; that is accepted behavior, not
// something the locator tries to disambiguate.
func alreadyApplied(current, after string) bool {
	foldedAfter := strings.TrimSpace(FoldText(after))
	if foldedAfter == "" {
		return false
	}

	if strings.Contains(FoldText(current), foldedAfter) {
		return true
	}

	afterLines := nonBlankLines(foldLines(after))
	if len(afterLines) < alreadyAppliedMinLines {
		return false
	}

	currentLines := nonBlankLines(foldLines(current))
	window := len(afterLines)

	for i := 0; i+window <= len(currentLines); i++ {
		matched := 0

		for j := 0; j < window; j++ {
			if currentLines[i+j] == afterLines[j] {
				matched++
			}
		}

		if float64(matched) >= alreadyAppliedRatio*float64(window) {
			return true
		}
	}

	return false
}

func nonBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}

	return out
}

func locateWholeFile(current, before string) []m.Candidate {
	if current == "" {
		return []m.Candidate{{LineOffset: 0, Tier: m.TierWholeFile}}
	}

	beforeCount := lineCount(before)
	if beforeCount == 0 {
		return nil
	}

	if float64(beforeCount) >= wholeFileLineRatio*float64(lineCount(current)) {
		return []m.Candidate{{LineOffset: 0, Tier: m.TierWholeFile}}
	}

	return nil
}

func locateExact(current, before string) []m.Candidate {
	return locateSubstring(current, before, m.TierExact)
}

func locateTrimmed(current, before string) []m.Candidate {
	trimmed := strings.TrimSpace(before)
	if trimmed == "" || trimmed == before {
		return nil
	}

	return locateSubstring(current, trimmed, m.TierTrimmed)
}

func locateSubstring(current, needle string, tier m.Tier) []m.Candidate {
	if needle == "" {
		return nil
	}

	var cands []m.Candidate

	start := 0
	for len(cands) < maxCandidates {
		idx := strings.Index(current[start:], needle)
		if idx < 0 {
			break
		}

		pos := start + idx
		cands = append(cands, m.Candidate{LineOffset: lineOffsetOfByte(current, pos), Tier: tier})
		start = pos + 1
	}

	return cands
}

func locateLargeWindow(current, before string) []m.Candidate {
	n := lineCount(before)
	if n > matchWindowLines {
		n = matchWindowLines
	}

	return locateWindow(current, before, n, m.TierWindow)
}

func locateSmallWindow(current, before string) []m.Candidate {
	if lineCount(before) < smallWindowLines {
		return nil
	}

	return locateWindow(current, before, smallWindowLines, m.TierWindow3)
}

func locateWindow(current, before string, n int, tier m.Tier) []m.Candidate {
	if n == 0 {
		return nil
	}

	beforeLines := foldLines(before)
	if len(beforeLines) < n {
		return nil
	}

	needle := beforeLines[:n]
	if len(nonBlankLines(needle)) == 0 {
		return nil
	}

	currentLines := foldLines(current)

	var cands []m.Candidate

	for i := 0; i+n <= len(currentLines) && len(cands) < maxCandidates; i++ {
		match := true

		for j := 0; j < n; j++ {
			if currentLines[i+j] != needle[j] {
				match = false
				break
			}
		}

		if match {
			cands = append(cands, m.Candidate{LineOffset: i, Tier: tier})
		}
	}

	return cands
}

func locateTwoLine(current, before string) []m.Candidate {
	beforeLines := foldLines(before)
	if len(beforeLines) < 2 {
		return nil
	}

	first, second := beforeLines[0], beforeLines[1]
	if len([]rune(first)) <= twoLineFirstMinLen || len([]rune(second)) <= twoLineSecondMinLen {
		return nil
	}

	currentLines := foldLines(current)

	var cands []m.Candidate

	for i := 0; i+2 <= len(currentLines) && len(cands) < maxCandidates; i++ {
		if currentLines[i] == first && currentLines[i+1] == second {
			cands = append(cands, m.Candidate{LineOffset: i, Tier: m.TierTwoLine})
		}
	}

	return cands
}

// literalPattern finds quoted strings and long numeric literals that are
// distinctive enough to anchor a match on their own.
var literalPattern = regexp.MustCompile(`'[^'\n]{5,}'|"[^"\n]{5,}"|[0-9][0-9_.]{4,}`)

func locateLiteral(current, before string) []m.Candidate {
	literal := literalPattern.FindString(before)
	if literal == "" {
		return nil
	}

	literal = strings.Trim(literal, `'"`)
	if len([]rune(literal)) < literalMinLen {
		return nil
	}

	context := []rune(FoldLine(firstLineOf(before)))
	if len(context) > literalContextLen {
		context = context[:literalContextLen]
	}

	contextStr := string(context)

	var cands []m.Candidate

	for i, line := range splitLines(current) {
		if len(cands) >= maxCandidates {
			break
		}

		if strings.Contains(line, literal) && strings.Contains(FoldLine(line), contextStr) {
			cands = append(cands, m.Candidate{LineOffset: i, Tier: m.TierLiteral})
		}
	}

	return cands
}

func locateFirstLine(current, before string) []m.Candidate {
	first := FoldLine(firstLineOf(before))
	if len([]rune(first)) <= firstLineExactMinLen {
		return nil
	}

	var cands []m.Candidate

	for i, line := range splitLines(current) {
		if len(cands) >= maxCandidates {
			break
		}

		if FoldLine(line) == first {
			cands = append(cands, m.Candidate{LineOffset: i, Tier: m.TierFirstLine})
		}
	}

	return cands
}

func locateFirstLinePrefix(current, before string) []m.Candidate {
	first := []rune(FoldLine(firstLineOf(before)))
	if len(first) <= firstLinePrefixMinLen {
		return nil
	}

	prefix := string(first[:int(float64(len(first))*firstLinePrefixRatio)])
	if prefix == "" {
		return nil
	}

	var cands []m.Candidate

	for i, line := range splitLines(current) {
		if len(cands) >= maxCandidates {
			break
		}

		if strings.HasPrefix(FoldLine(line), prefix) {
			cands = append(cands, m.Candidate{LineOffset: i, Tier: m.TierFirstLinePrefix})
		}
	}

	return cands
}

// appendCandidate is the guaranteed fallback. It scans backward for the last
// terminator line and proposes inserting right after it, else at the end of
// the file.
func (l *locator) appendCandidate(current string) m.Candidate {
	lines := splitLines(current)
	term := strings.ToLower(strings.TrimSpace(l.terminator))

	if term != "" {
		for i := len(lines) - 1; i >= 0; i-- {
			if strings.ToLower(strings.TrimSpace(lines[i])) == term {
				return m.Candidate{LineOffset: i + 1, Tier: m.TierAppend}
			}
		}
	}

	return m.Candidate{LineOffset: len(lines), Tier: m.TierAppend}
}

func firstLineOf(text string) string {
	lines := splitLines(text)
	if len(lines) == 0 {
		return ""
	}

	return lines[0]
}
