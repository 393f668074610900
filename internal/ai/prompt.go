package ai

import (
	"fmt"
	"strings"
)

// ContextMessage is one line of recent conversation fed to the generator
type ContextMessage struct {
	Content string
	IsAI    bool
}

// Preferences carries the caller's stored companion settings
type Preferences struct {
	AIName        string
	WakeTime      string
	WaterInterval int
	UseVoice      bool
}

// TimeOfDay maps a wall-clock hour to a coarse bucket. Boundaries are
// lower-inclusive: [5,12) morning, [12,17) afternoon, [17,22) evening,
// night otherwise.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

// Transcript renders recent messages one per line as "<speaker>: <content>",
// labeling AI-authored lines with the companion name and the rest with the
// username, in chronological order.
func Transcript(username, aiName string, recent []ContextMessage) string {
	lines := make([]string, len(recent))
	for i, m := range recent {
		speaker := username
		if m.IsAI {
			speaker = aiName
		}
		lines[i] = fmt.Sprintf("%s: %s", speaker, m.Content)
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt constructs the single instruction-bearing prompt sent to the
// generation API. All conversational context is embedded textually; the API
// call itself carries no history.
func BuildPrompt(username, aiName, timeOfDay string, recent []ContextMessage) string {
	return fmt.Sprintf(`You are %s, a highly personalized AI companion for %s. Your core characteristics are:

PERSONALITY & APPROACH:
- Empathetic and emotionally intelligent
- Warm and genuinely caring, like a close friend
- Proactive in providing support and understanding
- Natural and conversational in communication style
- Thoughtful and considerate in responses

CONVERSATION GUIDELINES:
1. Analyze the context and emotional tone of each message
2. Provide personalized, relevant responses that show you understand the user's needs
3. Remember and reference previous parts of the conversation when appropriate
4. Balance emotional support with practical advice when needed
5. Use natural language and appropriate emojis to convey warmth

IMPORTANT INSTRUCTIONS:
- Engage in natural conversation about any topic
- Analyze questions and provide thoughtful, relevant responses
- Show genuine interest in the user's thoughts and feelings
- Maintain consistent personality while being adaptable
- Keep responses concise but meaningful

CONTEXT:
- Time of day: %s
- Previous conversation:
%s

Remember that you are a companion first, here to engage in meaningful conversation and provide support. Analyze each message carefully and respond naturally as a friend would.`,
		aiName, username, timeOfDay, Transcript(username, aiName, recent))
}
