// Package metrics converts a stream of timestamped edit deltas plus the
// current document text into WritingMetrics snapshots. The engine knows
// nothing about rules or sessions.
package metrics

import (
	"time"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/lexicon"
)

const (
	// historyWindow bounds how long raw edit records are retained.
	historyWindow = 10 * time.Minute
	// speedWindow is the trailing window for words-per-minute.
	speedWindow = 60 * time.Second
	// deletionWindow is the trailing window for the deletion ratio.
	deletionWindow = 5 * time.Minute
	// pasteCharThreshold: a single insertion longer than this is a bulk
	// paste, not live composition, and is excluded from speed accounting.
	pasteCharThreshold = 50
	// maxWpmReadings bounds the trend history.
	maxWpmReadings = 10
	// trendStepWpm is the step size separating increasing/decreasing
	// from stable.
	trendStepWpm = 5.0
)

type editRecord struct {
	at            time.Time
	insertedChars int
	removedChars  int
	insertedWords float64
	pasteExcluded bool
}

// Engine accumulates edit history and derives metric snapshots.
// Not safe for concurrent use; the runner serializes all access.
type Engine struct {
	classifier lexicon.Classifier
	segmenter  lexicon.Segmenter
	now        func() time.Time

	history      []editRecord
	sessionStart time.Time
	lastEditAt   time.Time

	fullText   string
	cursorLine string
	cursorOff  int

	recentWpm []float64

	paragraphsAtAdvisory int

	latest domain.WritingMetrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSegmenter plugs in a word-segmentation capability for logographic
// text. Without one, logographic runs stay raw whitespace tokens.
func WithSegmenter(seg lexicon.Segmenter) Option {
	return func(e *Engine) { e.segmenter = seg }
}

// NewEngine creates a metrics engine using the given token classifier.
// A nil classifier disables lexical ratios (they stay 0).
func NewEngine(classifier lexicon.Classifier, opts ...Option) *Engine {
	e := &Engine{
		classifier: classifier,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sessionStart = e.now()
	return e
}

// Ingest appends one edit delta to the bounded history.
func (e *Engine) Ingest(delta domain.EditDelta) {
	if delta.Timestamp.IsZero() {
		delta.Timestamp = e.now()
	}
	if !delta.Empty() {
		e.lastEditAt = delta.Timestamp
	}

	insertedRunes := len([]rune(delta.Inserted))
	rec := editRecord{
		at:            delta.Timestamp,
		insertedChars: insertedRunes,
		removedChars:  len([]rune(delta.Removed)),
		insertedWords: CountWords(delta.Inserted),
		pasteExcluded: insertedRunes > pasteCharThreshold,
	}
	e.history = append(e.history, rec)
	e.prune(delta.Timestamp)
}

// ObserveCursor records the cursor context reported by the host on a
// content change.
func (e *Engine) ObserveCursor(fullText, lineText string, offset int) {
	e.fullText = fullText
	e.cursorLine = lineText
	e.cursorOff = offset
}

// SetText records the raw document text for periodic snapshotting.
func (e *Engine) SetText(text string) {
	e.fullText = text
}

// Reset clears all history and restarts the session clock.
func (e *Engine) Reset() {
	e.history = nil
	e.recentWpm = nil
	e.lastEditAt = time.Time{}
	e.sessionStart = e.now()
	e.paragraphsAtAdvisory = 0
	e.latest = domain.WritingMetrics{}
}

// NoteAdvisory resets only the paragraphs-since-advisory counter; speed,
// ratios, and edit history are undisturbed.
func (e *Engine) NoteAdvisory() {
	e.paragraphsAtAdvisory = len(paragraphs(e.fullText))
}

// Snapshot returns the most recently computed metrics.
func (e *Engine) Snapshot() domain.WritingMetrics {
	return e.latest
}

// Text returns the last observed document text.
func (e *Engine) Text() string {
	return e.fullText
}

// Recompute derives a fresh snapshot from the current history and text,
// appends a speed reading, and stores the snapshot wholesale.
func (e *Engine) Recompute() domain.WritingMetrics {
	now := e.now()
	e.prune(now)

	wpm := e.speed(now)
	e.recentWpm = append(e.recentWpm, wpm)
	if len(e.recentWpm) > maxWpmReadings {
		e.recentWpm = e.recentWpm[len(e.recentWpm)-maxWpmReadings:]
	}

	tokens := lexicon.Tokenize(e.fullText, e.segmenter)
	adjectives, verbs, abstracts := e.classifyTokens(tokens)

	var pauseSeconds float64
	if !e.lastEditAt.IsZero() {
		pauseSeconds = now.Sub(e.lastEditAt).Seconds()
		if pauseSeconds < 0 {
			pauseSeconds = 0
		}
	}

	paras := paragraphs(e.fullText)
	var currentParagraphLen int
	if len(paras) > 0 {
		currentParagraphLen = int(CountWords(paras[len(paras)-1]))
	}
	sinceAdvisory := len(paras) - e.paragraphsAtAdvisory
	if sinceAdvisory < 0 {
		sinceAdvisory = 0
	}

	readings := make([]float64, len(e.recentWpm))
	copy(readings, e.recentWpm)

	e.latest = domain.WritingMetrics{
		WordsPerMinute:              wpm,
		TotalWords:                  int(CountWords(e.fullText)),
		SessionDurationMinutes:      now.Sub(e.sessionStart).Minutes(),
		AdjectiveRatio:              ratio(adjectives, len(tokens)),
		VerbRatio:                   ratio(verbs, len(tokens)),
		AbstractNounRatio:           ratio(abstracts, len(tokens)),
		AverageSentenceLength:       averageSentenceLength(e.fullText),
		PauseDurationSeconds:        pauseSeconds,
		PauseLocation:               ClassifyPause(e.fullText, e.cursorLine, e.cursorOff),
		DeletionRatio:               e.deletionRatio(now),
		WpmTrend:                    Trend(readings),
		RecentWpmReadings:           readings,
		CurrentParagraphLength:      currentParagraphLen,
		ParagraphsSinceLastAdvisory: sinceAdvisory,
		ComputedAt:                  now,
	}
	return e.latest
}

// speed sums word counts of non-paste insertions within the trailing
// 60-second window. The window is one minute, so the sum is already a
// per-minute rate.
func (e *Engine) speed(now time.Time) float64 {
	cutoff := now.Add(-speedWindow)
	var words float64
	for _, rec := range e.history {
		if rec.at.Before(cutoff) || rec.pasteExcluded {
			continue
		}
		words += rec.insertedWords
	}
	return words
}

func (e *Engine) deletionRatio(now time.Time) float64 {
	cutoff := now.Add(-deletionWindow)
	var inserted, removed int
	for _, rec := range e.history {
		if rec.at.Before(cutoff) {
			continue
		}
		inserted += rec.insertedChars
		removed += rec.removedChars
	}
	if inserted == 0 {
		return 0
	}
	return float64(removed) / float64(inserted)
}

func (e *Engine) classifyTokens(tokens []string) (adjectives, verbs, abstracts int) {
	if e.classifier == nil {
		return 0, 0, 0
	}
	for _, tok := range tokens {
		switch e.classifier.Classify(tok) {
		case lexicon.CategoryAdjective:
			adjectives++
		case lexicon.CategoryVerb:
			verbs++
		case lexicon.CategoryAbstractNoun:
			abstracts++
		}
	}
	return adjectives, verbs, abstracts
}

func (e *Engine) prune(now time.Time) {
	cutoff := now.Add(-historyWindow)
	keep := 0
	for keep < len(e.history) && e.history[keep].at.Before(cutoff) {
		keep++
	}
	if keep > 0 {
		e.history = append(e.history[:0], e.history[keep:]...)
	}
}

func ratio(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// Trend classifies the speed trajectory from the last readings. Fewer
// than 3 readings is stable by definition. Over the trailing window of
// up to 5 readings, the older half is the first 2 and the newer half
// the last 2; a step above +5 wpm is increasing, below -5 decreasing.
func Trend(readings []float64) domain.WpmTrend {
	if len(readings) < 3 {
		return domain.TrendStable
	}
	window := readings
	if len(window) > 5 {
		window = window[len(window)-5:]
	}
	older := (window[0] + window[1]) / 2
	newer := (window[len(window)-2] + window[len(window)-1]) / 2
	step := newer - older
	switch {
	case step > trendStepWpm:
		return domain.TrendIncreasing
	case step < -trendStepWpm:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}
