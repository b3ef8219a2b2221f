package report

const (
	promptAnimalType   = "📝 What kind of animal is it? (e.g. dog, cat, bird)"
	promptLocation     = "📍 What is the exact location of the animal?"
	promptHealth       = "❤️ What is the animal's health status? (e.g. injured, healthy, malnourished)"
	promptContactName  = "📞 Please enter a contact name. If you prefer not to share it, type 'Anonymous' or 'Omit'."
	promptContactPhone = "📱 Please enter a contact phone number:"
	promptDescription  = "✍️ Please write an additional description of the report."
	promptAnonymous    = "✅ Understood, the report will be anonymous. Please write an additional description."
	promptPhoto        = "📸 If you have a photo, send it now. Otherwise type 'omit'."
	promptConfirm      = "Do you want to send the report? Type 'Send' to confirm or /cancel to stop."
	promptConfirmAgain = "Please type 'Send' to confirm, or /cancel to stop."

	ackPhotoReceived = "✅ Photo received."
	ackPhotoSkipped  = "✅ Photo skipped."
	ackCancelled     = "❌ The report has been cancelled. You can use /start to begin again."

	nudgeTextOnly = "⚠️ Please answer with a text message."
)

var prompts = map[State]string{
	StateAnimalType:   promptAnimalType,
	StateLocation:     promptLocation,
	StateHealth:       promptHealth,
	StateContactName:  promptContactName,
	StateContactPhone: promptContactPhone,
	StateDescription:  promptDescription,
	StatePhoto:        promptPhoto,
	StateConfirm:      promptConfirm,
}

var quickAnswers = map[State][][]string{
	StateContactName: {{"Anonymous"}},
	StatePhoto:       {{"Omit"}},
	StateConfirm:     {{"Send"}, {"/cancel"}},
}

// Prompt returns the question asked at state. Idle has no prompt.
func Prompt(s State) Reply {
	return Reply{Text: prompts[s], Keyboard: quickAnswers[s]}
}
