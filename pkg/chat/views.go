package chat

import "github.com/odvcencio/tripdesk/pkg/render"

// Transcript is the visible, append-only message list.
type Transcript interface {
	Append(el render.MessageElement)
	// ScrollToLatest brings the newest message into view.
	ScrollToLatest()
}

// TypingIndicator is the transient "thinking" element.
type TypingIndicator interface {
	ShowTyping()
	HideTyping()
}

// InputControl is the text box the user types into.
type InputControl interface {
	Value() string
	Clear()
}

// KeyEnter is the only key that sends.
const KeyEnter = "Enter"
