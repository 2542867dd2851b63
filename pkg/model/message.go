package model

// InboundMessage is a single message event delivered by the messaging
// transport. The conversation ID identifies the dialogue; the sender name is
// a display-name-or-fallback resolved upstream and is only used in greetings.
// Text may be empty: any message from an unseen conversation starts a
// session, and the dialogue re-prompts on input it cannot use.
type InboundMessage struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	SenderName     string `json:"sender_name"`
	Text           string `json:"text"`
}
