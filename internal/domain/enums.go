package domain

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ValidPriorities is the canonical set of accepted rule priority strings.
var ValidPriorities = map[string]bool{
	"high": true, "medium": true, "low": true,
}

type WpmTrend string

const (
	TrendIncreasing WpmTrend = "increasing"
	TrendDecreasing WpmTrend = "decreasing"
	TrendStable     WpmTrend = "stable"
)

type PauseLocation string

const (
	PauseStart        PauseLocation = "start"
	PauseMidSentence  PauseLocation = "mid_sentence"
	PauseEndSentence  PauseLocation = "end_sentence"
	PauseEndParagraph PauseLocation = "end_paragraph"
	PauseUnknown      PauseLocation = "unknown"
)

type SessionStatus string

const (
	SessionIdle       SessionStatus = "idle"
	SessionPending    SessionStatus = "pending"
	SessionConversing SessionStatus = "conversing"
)

type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// CloseReason records why a session returned to idle.
type CloseReason string

const (
	CloseDismissed      CloseReason = "dismissed"
	CloseResolved       CloseReason = "resolved"
	CloseResumedWriting CloseReason = "resumed_writing"
	CloseMaxTurns       CloseReason = "max_turns"
	CloseForcedReset    CloseReason = "forced_reset"
)
