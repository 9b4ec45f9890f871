package conversation

import "github.com/PabloGalante/gemini-suite/internal/domain"

// ViewInfo describes one front end for navigation.
type ViewInfo struct {
	View     domain.View
	Label    string
	Path     string
	Subtitle string
	Welcome  string
}

var viewCatalogue = map[domain.View]ViewInfo{
	domain.ViewChat: {
		View:     domain.ViewChat,
		Label:    "Chat Assistant",
		Path:     "/chat",
		Subtitle: "General purpose conversational AI",
		Welcome:  "Hello! I'm powered by Gemini 2.5 Flash. Ask me anything.",
	},
	domain.ViewVision: {
		View:     domain.ViewVision,
		Label:    "Vision Analysis",
		Path:     "/vision",
		Subtitle: "Multimodal capabilities with Gemini",
		Welcome:  "Upload an image and I'll analyze it for you.",
	},
	domain.ViewSearch: {
		View:     domain.ViewSearch,
		Label:    "Web Search",
		Path:     "/search",
		Subtitle: "Real-time information from Google Search",
		Welcome:  "I can browse the web for real-time information. Try asking about recent events.",
	},
}

// Texts shown instead of raw errors, one per view whatever the failure.
const (
	failureChat   = "Sorry, I encountered an error processing your request. Please check your API Key."
	failureVision = "Failed to analyze image. Please try again."
	failureSearch = "Search failed. Please check your API limits or connection."
)

// Vision texts for submissions without an image or without a prompt.
const (
	visionNeedsImage  = "Please upload an image for vision analysis."
	visionDefaultText = "Analyze this image"
)

func failureText(view domain.View) string {
	switch view {
	case domain.ViewVision:
		return failureVision
	case domain.ViewSearch:
		return failureSearch
	default:
		return failureChat
	}
}
