package models

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentAskQuestion Intent = "ask_question"
	IntentSummarize   Intent = "summarize"
	IntentPlayAudio   Intent = "play_audio"
)
