package services

import "strings"

// OfflineResponder is the canned fallback behind the LLM: the same
// keyword-matching approach as the mood classifier with its own table. It is
// deterministic, so the same message always gets the same reply, and it
// guarantees the user sees a response even fully offline.
type OfflineResponder struct{}

func NewOfflineResponder() *OfflineResponder {
	return &OfflineResponder{}
}

type responderEntry struct {
	keywords  []string
	responses []string
}

var responderTable = []responderEntry{
	{
		keywords: []string{"hopeless", "worthless", "give up", "can't go on", "end it", "hurt myself"},
		responses: []string{
			"I'm really glad you told me. What you're feeling sounds incredibly heavy, and you don't have to carry it alone. If you're in crisis right now, please reach out to a crisis line — the resources tab has numbers that answer at any hour.",
		},
	},
	{
		keywords: []string{"anxious", "anxiety", "worried", "nervous", "panic"},
		responses: []string{
			"It sounds like anxiety is taking up a lot of space right now. Try a slow breath with me: in for four, hold for four, out for six. What's the one worry that feels loudest?",
			"Feeling anxious is exhausting. Sometimes it helps to name the worry out loud — what's on your mind the most right now?",
		},
	},
	{
		keywords: []string{"sad", "down", "lonely", "crying", "depressed", "miserable"},
		responses: []string{
			"I'm sorry today feels this heavy. You don't have to fix anything right now — would you like to tell me a bit more about what's weighing on you?",
			"That sounds really hard. Sadness deserves room too; I'm here and listening. What happened today?",
		},
	},
	{
		keywords: []string{"stressed", "stress", "overwhelmed", "pressure", "too much"},
		responses: []string{
			"That's a lot to hold at once. When everything feels urgent, picking the single smallest next step can help. What's one small thing you could set down today?",
			"Being stretched that thin wears anyone down. What's the biggest source of pressure right now?",
		},
	},
	{
		keywords: []string{"angry", "furious", "frustrated", "annoyed", "mad"},
		responses: []string{
			"It makes sense to be angry when something feels unfair. Want to walk me through what happened?",
			"Frustration like that usually points at something that matters to you. What triggered it?",
		},
	},
	{
		keywords: []string{"can't sleep", "insomnia", "tired", "exhausted", "sleep"},
		responses: []string{
			"Rough nights make everything harder. A short wind-down — dim light, no screens, slow breathing — can help your body catch up. How has your sleep been this week?",
		},
	},
	{
		keywords: []string{"grateful", "thankful", "happy", "great day", "good news"},
		responses: []string{
			"That's lovely to hear — moments like that are worth savoring. What made it special?",
			"I'm glad something good happened. Holding onto the small wins really does add up.",
		},
	},
	{
		keywords: []string{"hello", "hi ", "hey"},
		responses: []string{
			"Hi there. I'm here whenever you want to talk — how are you feeling today?",
		},
	},
}

var defaultResponses = []string{
	"Thank you for sharing that with me. How did it make you feel?",
	"I'm listening. Tell me more about what's on your mind.",
	"That sounds important. What part of it is sitting with you the most?",
}

// Respond returns the canned reply for a message. Selection within a
// response list is keyed off the message length so it is stable per input.
func (r *OfflineResponder) Respond(message string) string {
	lower := strings.ToLower(message)

	for _, entry := range responderTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.responses[len(lower)%len(entry.responses)]
			}
		}
	}
	return defaultResponses[len(lower)%len(defaultResponses)]
}
