package logger

// Intention tags what a log line is about, independent of its level.
// The console handler turns it into a short marker; file logs keep it
// as the structured key "intention".
type Intention string

const (
	IntentionStatus  Intention = "status"
	IntentionConfig  Intention = "config"
	IntentionRequest Intention = "request"
	IntentionTree    Intention = "tree"
	IntentionWrite   Intention = "write"
	IntentionSuccess Intention = "success"
	IntentionCancel  Intention = "cancel"
	IntentionDebug   Intention = "debug"
	IntentionWarning Intention = "warning" // no marker; level handles emphasis
	IntentionError   Intention = "error"   // no marker; level handles emphasis
)

// markerFor returns the console prefix for an intention.
func markerFor(i Intention) string {
	switch i {
	case IntentionStatus:
		return "ℹ️"
	case IntentionConfig:
		return "⚙️"
	case IntentionRequest:
		return "→"
	case IntentionTree:
		return "🌲"
	case IntentionWrite:
		return "✎"
	case IntentionSuccess:
		return "✅"
	case IntentionCancel:
		return "🛑"
	case IntentionDebug:
		return "🛠️"
	default:
		return "➤"
	}
}
