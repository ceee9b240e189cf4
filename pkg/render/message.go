package render

// Role tags a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// CSS-style classes selected by role.
const (
	ClassUser      = "user-message"
	ClassAssistant = "assistant-message"
	ClassError     = "error-message"
)

// Message is one transcript entry. Messages are never mutated once appended.
type Message struct {
	Role    Role
	Content string
	// Agent names the backend agent that answered; only set on assistant messages.
	Agent string
}

// MessageElement is what a view draws for a Message. Text is plain text.
type MessageElement struct {
	Role  Role
	Class string
	Text  string
}

// ChatMessage maps a message to its element. Role picks the class and never
// changes the content; an agent prefixes the text as "[agent] ".
func ChatMessage(msg Message) MessageElement {
	text := msg.Content
	if msg.Agent != "" {
		text = "[" + msg.Agent + "] " + msg.Content
	}
	return MessageElement{
		Role:  msg.Role,
		Class: classFor(msg.Role),
		Text:  text,
	}
}

func classFor(role Role) string {
	switch role {
	case RoleUser:
		return ClassUser
	case RoleError:
		return ClassError
	default:
		return ClassAssistant
	}
}
