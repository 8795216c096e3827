package quiz

import (
	"math/rand"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/idoneo/backend/internal/models"
)

type Mode string

const (
	ModeStandard     Mode = "standard"
	ModeErrorsRecent Mode = "errors_recent"
	ModeMostWrong    Mode = "most_wrong"
)

const (
	// DefaultRecentAttempts bounds the errors_recent history scan.
	DefaultRecentAttempts = 10
	// DefaultLimit caps the result of the history-based modes.
	DefaultLimit = 50
	// MostWrongScanCap bounds how many historical attempts most_wrong tallies.
	MostWrongScanCap = 500
)

// Policy is the caller-supplied selection recipe. Not persisted; derived from
// query parameters on session start.
type Policy struct {
	Mode           Mode
	Distribution   map[string]int // subject id -> requested count (standard mode)
	AllQuestions   bool           // official fallback: whole pool, no distribution
	Subjects       []string       // pool restriction, empty = all
	Minutes        int            // 0 = use the quiz default time limit
	RecentAttempts int
	Limit          int
	AutoNext       bool
	InstantCheck   bool
}

// NeedsHistory reports whether this policy requires past attempts.
func (p Policy) NeedsHistory() bool {
	return p.Mode == ModeErrorsRecent || p.Mode == ModeMostWrong
}

// HistoryScanLimit is how many attempts to fetch for this policy.
func (p Policy) HistoryScanLimit() int {
	if p.Mode == ModeMostWrong {
		return MostWrongScanCap
	}
	return p.RecentAttempts
}

// ParsePolicy builds a Policy from session-start query parameters:
// mode, minutes, subjects (csv ids), dist (csv subjectId:count pairs),
// attempts, limit, auto_next, instant_check. Unknown modes fall back to
// standard; malformed numbers fall back to defaults.
func ParsePolicy(values url.Values) Policy {
	p := Policy{
		Mode:           ModeStandard,
		Distribution:   map[string]int{},
		RecentAttempts: DefaultRecentAttempts,
		Limit:          DefaultLimit,
	}

	switch Mode(values.Get("mode")) {
	case ModeErrorsRecent:
		p.Mode = ModeErrorsRecent
	case ModeMostWrong:
		p.Mode = ModeMostWrong
	}

	if raw := values.Get("subjects"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				p.Subjects = append(p.Subjects, id)
			}
		}
	}

	if raw := values.Get("dist"); raw != "" {
		for _, chunk := range strings.Split(raw, ",") {
			id, rawCount, ok := strings.Cut(strings.TrimSpace(chunk), ":")
			if !ok || id == "" {
				continue
			}
			if n, err := strconv.Atoi(rawCount); err == nil && n > 0 {
				p.Distribution[id] = n
			}
		}
	}

	if n := positiveInt(values.Get("minutes")); n > 0 {
		p.Minutes = n
	}
	if n := positiveInt(values.Get("attempts")); n > 0 {
		p.RecentAttempts = n
	}
	if n := positiveInt(values.Get("limit")); n > 0 {
		p.Limit = n
	}
	p.AutoNext = values.Get("auto_next") == "true"
	p.InstantCheck = values.Get("instant_check") == "true"

	return p
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// ── Strategy ─────────────────────────────────────────────

// Select assembles the ordered question list for a session. History must be
// ordered newest-first; rnd drives every random draw so callers can inject a
// fixed seed.
func Select(pool *Pool, policy Policy, history []models.Attempt, rnd *rand.Rand) ([]models.Question, error) {
	var selected []models.Question

	switch policy.Mode {
	case ModeStandard:
		switch {
		case policy.AllQuestions:
			selected = make([]models.Question, len(pool.Questions))
			copy(selected, pool.Questions)
			rnd.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
		case len(policy.Distribution) == 0:
			return nil, ErrInvalidPolicy
		default:
			selected = selectStandard(pool, policy.Distribution, rnd)
		}
	case ModeErrorsRecent:
		selected = selectErrorsRecent(pool, history, policy.Limit)
	case ModeMostWrong:
		selected = selectMostWrong(pool, history, policy.Limit)
	default:
		return nil, ErrInvalidPolicy
	}

	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	return selected, nil
}

// selectStandard draws min(requested, available) questions per subject
// without replacement, then shuffles the combined list so presentation order
// does not reveal subject grouping. Subjects are drawn in sorted-id order to
// keep fixed-seed output deterministic.
func selectStandard(pool *Pool, distribution map[string]int, rnd *rand.Rand) []models.Question {
	subjectIDs := make([]string, 0, len(distribution))
	for id := range distribution {
		subjectIDs = append(subjectIDs, id)
	}
	sort.Strings(subjectIDs)

	var selected []models.Question
	for _, sid := range subjectIDs {
		available := pool.SubjectQuestions(sid)
		if len(available) == 0 {
			continue
		}
		drawn := make([]models.Question, len(available))
		copy(drawn, available)
		rnd.Shuffle(len(drawn), func(i, j int) { drawn[i], drawn[j] = drawn[j], drawn[i] })

		count := distribution[sid]
		if count > len(drawn) {
			count = len(drawn)
		}
		selected = append(selected, drawn[:count]...)
	}

	rnd.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
	return selected
}

// selectErrorsRecent walks attempts newest-first and, within each attempt,
// the answers in stored order, collecting questions answered incorrectly.
// Duplicates and questions no longer in the active pool are skipped; the
// scan stops once limit questions are collected.
func selectErrorsRecent(pool *Pool, history []models.Attempt, limit int) []models.Question {
	seen := make(map[string]bool)
	var selected []models.Question

	for _, attempt := range history {
		for _, ans := range attempt.Answers {
			if len(selected) >= limit {
				return selected
			}
			if ans.QuestionID == "" || ans.IsCorrect || seen[ans.QuestionID] {
				continue
			}
			q, ok := pool.Question(ans.QuestionID)
			if !ok {
				continue
			}
			seen[ans.QuestionID] = true
			selected = append(selected, q)
		}
	}
	return selected
}

// selectMostWrong tallies wrong answers per question across the scanned
// attempts and returns the top limit questions by descending wrong count.
// Ties keep first-seen order (newest attempt first), which makes the ranking
// deterministic. Questions never answered wrong are excluded.
func selectMostWrong(pool *Pool, history []models.Attempt, limit int) []models.Question {
	wrongCounts := make(map[string]int)
	var firstSeen []string

	for _, attempt := range history {
		for _, ans := range attempt.Answers {
			if ans.QuestionID == "" || !pool.Contains(ans.QuestionID) {
				continue
			}
			if _, ok := wrongCounts[ans.QuestionID]; !ok {
				wrongCounts[ans.QuestionID] = 0
				firstSeen = append(firstSeen, ans.QuestionID)
			}
			if !ans.IsCorrect {
				wrongCounts[ans.QuestionID]++
			}
		}
	}

	ranked := firstSeen[:0]
	for _, qid := range firstSeen {
		if wrongCounts[qid] > 0 {
			ranked = append(ranked, qid)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return wrongCounts[ranked[i]] > wrongCounts[ranked[j]]
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	selected := make([]models.Question, 0, len(ranked))
	for _, qid := range ranked {
		if q, ok := pool.Question(qid); ok {
			selected = append(selected, q)
		}
	}
	return selected
}
