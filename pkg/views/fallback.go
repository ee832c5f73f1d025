package views

// User-facing messages shown in place of gateway errors.
const (
	SearchFallback    = "Pole sana, we could not reach the legal database right now. Please try again shortly."
	TranslateFallback = "Pole sana, this text could not be translated right now. Please try again shortly."
	MediaFallback     = "Pole sana, we could not analyze this file. Please try again with a clear photo or a short video."

	ChatGreeting       = "Hujambo. Mimi ni KaziTrust AI, your dedicated legal counselor. How may I assist you with your employment situation today? Our session is secure and grounded in the Employment Act 2007."
	ChatEmptyReply     = "I apologize, an unexpected processing error occurred."
	ChatConnectionLost = "Pole sana, the connection to the legal database was interrupted. Please try again shortly."

	SpeechFallback = "Audio is not available for this text right now."
)
