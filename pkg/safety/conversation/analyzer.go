// Package conversation scores the health of a conversation: how well it
// flows, whether it stays on child-appropriate topics, and whether the reply
// or the recent turns contain grooming-style behavioral red flags.
package conversation

import (
	"sort"
	"strings"
	"time"

	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

const (
	// MinFlowScore is the flow floor below which a context is unsafe.
	MinFlowScore = 0.3

	recentWindow      = 5
	progressionSpan   = 3
	dismissivePenalty = 0.2
	inappropriateHit  = 0.25

	// assumed length of one turn when the caller does not report a duration
	turnDuration = 30 * time.Second

	// ConcernPrivacyRisk is reported when personal information shows up.
	ConcernPrivacyRisk = "privacy_risk"
	// ConcernLongSession is reported when a session runs past the age limit.
	ConcernLongSession = "session_too_long"
	// ConcernRepeatedReply is reported when the reply repeats one of the
	// last AI replies word for word.
	ConcernRepeatedReply = "repeated_reply"
)

// maxSessionMinutes is the longest healthy session per age; older children
// use the last entry.
var maxSessionMinutes = map[int]int{3: 10, 4: 15, 5: 20, 6: 25, 7: 30, 8: 35}

// Analyzer scores conversation context. It keeps no per-session state; all
// history comes from the ConversationContext.
type Analyzer struct {
	store *rules.Store

	themes     []string
	behavioral []string
}

// NewAnalyzer creates a context analyzer over store.
func NewAnalyzer(store *rules.Store) *Analyzer {
	return &Analyzer{
		store:      store,
		themes:     sortedKeys(store.Lookup(rules.CategoryConcernThemes)),
		behavioral: sortedKeys(store.Lookup(rules.CategoryBehavioral)),
	}
}

// Analyze scores the reply text in the context of cc.
func (a *Analyzer) Analyze(text string, cc model.ConversationContext) (*model.ContextAnalysisResult, error) {
	if err := model.CheckText(text); err != nil {
		return nil, err
	}
	for _, h := range cc.ConversationHistory {
		if err := model.CheckText(h); err != nil {
			return nil, err
		}
	}

	lower := rules.Normalize(text)
	history := normalizeAll(cc.ConversationHistory)
	recent := tail(history, recentWindow)

	result := &model.ContextAnalysisResult{
		BehavioralConcerns: make([]string, 0),
		CriticalConcerns:   make([]string, 0),
	}

	result.ConversationFlowScore = a.flow(lower, history)
	result.TopicAppropriateness = a.topicAppropriateness(lower, history)

	for _, theme := range a.themes {
		hits := 0
		for _, h := range recent {
			if len(a.store.MatchSubcategory(rules.CategoryConcernThemes, theme, h)) > 0 {
				hits++
			}
		}
		if hits >= 2 {
			result.BehavioralConcerns = append(result.BehavioralConcerns, "repetitive_"+theme)
		}
	}

	if a.store.Contains(rules.CategoryPrivacy, lower) || anyContains(a.store, rules.CategoryPrivacy, recent) {
		result.BehavioralConcerns = append(result.BehavioralConcerns, ConcernPrivacyRisk)
	}

	scan := append([]string{lower}, recent...)
	for _, concern := range a.behavioral {
		for _, utterance := range scan {
			if len(a.store.MatchSubcategory(rules.CategoryBehavioral, concern, utterance)) > 0 {
				result.CriticalConcerns = append(result.CriticalConcerns, concern)
				result.BehavioralConcerns = append(result.BehavioralConcerns, concern)
				break
			}
		}
	}

	if repeatsPrevious(lower, cc.PreviousAIResponses) {
		result.BehavioralConcerns = append(result.BehavioralConcerns, ConcernRepeatedReply)
	}

	sessionOK := sessionWithinLimit(cc, max(len(history), cc.InteractionCount))
	if !sessionOK {
		result.BehavioralConcerns = append(result.BehavioralConcerns, ConcernLongSession)
	}

	result.ConversationQuality = a.quality(lower, history)

	result.ContextSafe = len(result.CriticalConcerns) == 0 &&
		result.ConversationFlowScore >= MinFlowScore &&
		a.progressionOK(history) &&
		a.escalationOK(history) &&
		a.interactionPatternsOK(recent) &&
		sessionOK

	return result, nil
}

// flow is the mean of coherence, response quality and rhythm over the
// history, minus a penalty for each dismissive phrase in the reply.
func (a *Analyzer) flow(lower string, history []string) float64 {
	score := 1.0
	if len(history) >= 2 {
		score = (a.coherence(history) + a.responseQuality(history) + rhythm(len(history))) / 3
	}
	dismissive := a.store.Match(rules.CategoryDismissive, lower)
	score -= dismissivePenalty * float64(len(dismissive))
	return model.Clamp01(score)
}

// coherence drops by 0.2 for every extra topic touched in the recent turns.
func (a *Analyzer) coherence(history []string) float64 {
	topics := make(map[string]bool)
	for _, h := range tail(history, recentWindow) {
		for _, m := range a.store.Match(rules.CategoryTopics, h) {
			topics[m.Subcategory] = true
			break
		}
	}
	if len(topics) == 0 {
		return 0.8
	}
	return model.Clamp01(1 - float64(len(topics)-1)*0.2)
}

func (a *Analyzer) responseQuality(history []string) float64 {
	recent := tail(history, progressionSpan)
	total := 0.0
	for _, h := range recent {
		positive := 0.8
		if a.store.Contains(rules.CategoryPositive, h) {
			positive = 1
		}
		engagement := 0.9
		if a.store.Contains(rules.CategoryEngagement, h) {
			engagement = 1
		}
		length := 0.7
		if n := len(strings.Fields(h)); n >= 5 && n <= 30 {
			length = 1
		}
		total += (positive + engagement + length) / 3
	}
	return total / float64(len(recent))
}

func rhythm(turns int) float64 {
	switch {
	case turns <= 10:
		return 1
	case turns <= 20:
		return 0.8
	default:
		return 0.6
	}
}

// topicAppropriateness loses a quarter for each distinct inappropriate topic
// phrase in the reply or the history.
func (a *Analyzer) topicAppropriateness(lower string, history []string) float64 {
	seen := make(map[string]bool)
	for _, utterance := range append([]string{lower}, history...) {
		for _, m := range a.store.Match(rules.CategoryInappropriateTopic, utterance) {
			seen[m.Phrase] = true
		}
	}
	return model.Clamp01(1 - inappropriateHit*float64(len(seen)))
}

// quality is the mean of engagement, educational content, warmth and the
// absence of concerning themes across every utterance including the reply.
func (a *Analyzer) quality(lower string, history []string) float64 {
	utterances := append(append([]string(nil), history...), lower)
	n := float64(len(utterances))

	var engaged, educational, warm, concerning float64
	for _, u := range utterances {
		if a.store.Contains(rules.CategoryEngagement, u) {
			engaged++
		}
		if a.store.Contains(rules.CategoryEducational, u) {
			educational++
		}
		if a.store.Contains(rules.CategoryWarmth, u) {
			warm++
		}
		if a.store.Contains(rules.CategoryConcernThemes, u) || a.store.Contains(rules.CategoryBehavioral, u) {
			concerning++
		}
	}
	return (engaged/n + educational/n + warm/n + (1 - concerning/n)) / 4
}

// progressionOK fails when two of the last three turns touch concerning or
// private subjects.
func (a *Analyzer) progressionOK(history []string) bool {
	if len(history) < 2 {
		return true
	}
	count := 0
	for _, h := range tail(history, progressionSpan) {
		if a.store.Contains(rules.CategoryEscalation, h) || a.store.Contains(rules.CategoryPrivacy, h) {
			count++
		}
	}
	return count < 2
}

// escalationOK fails when concerning language grows over the last three turns.
func (a *Analyzer) escalationOK(history []string) bool {
	if len(history) < progressionSpan {
		return true
	}
	recent := tail(history, progressionSpan)
	first := len(a.store.Match(rules.CategoryEscalation, recent[0]))
	last := len(a.store.Match(rules.CategoryEscalation, recent[len(recent)-1]))
	return last <= first
}

// interactionPatternsOK fails on repeated personal-information probing.
func (a *Analyzer) interactionPatternsOK(recent []string) bool {
	count := 0
	for _, h := range recent {
		if a.store.Contains(rules.CategoryPrivacy, h) ||
			len(a.store.MatchSubcategory(rules.CategoryBehavioral, "personal_info_request", h)) > 0 {
			count++
		}
	}
	return count < 2
}

func sessionWithinLimit(cc model.ConversationContext, turns int) bool {
	duration := cc.SessionDuration
	if duration == 0 {
		duration = time.Duration(turns) * turnDuration
	}
	age := cc.ChildAge
	if age < 3 {
		age = 3
	}
	if age > 8 {
		age = 8
	}
	return duration <= time.Duration(maxSessionMinutes[age])*time.Minute
}

// repeatsPrevious reports whether lower matches one of the last replies.
func repeatsPrevious(lower string, previous []string) bool {
	if lower == "" {
		return false
	}
	for _, p := range tail(previous, recentWindow) {
		if rules.Normalize(p) == lower {
			return true
		}
	}
	return false
}

func anyContains(store *rules.Store, category string, texts []string) bool {
	for _, t := range texts {
		if store.Contains(category, t) {
			return true
		}
	}
	return false
}

func normalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = rules.Normalize(t)
	}
	return out
}

func tail(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
