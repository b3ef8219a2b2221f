package bot

// Command names. The Spanish aliases are resolved by the command registry.
const (
	CmdStart    = "/start"
	CmdReport   = "/report"
	CmdCancel   = "/cancel"
	CmdDonation = "/donacion"
	CmdAdopt    = "/adoptar"
)

// CommandSpec describes a command for registration and the Telegram menu.
type CommandSpec struct {
	Name        string
	Description string
	Aliases     []string
}

// Commands lists every command the bot answers.
func Commands() []CommandSpec {
	return []CommandSpec{
		{Name: CmdStart, Description: "Show the welcome menu"},
		{Name: CmdReport, Description: "Report an animal in danger", Aliases: []string{"/reportar"}},
		{Name: CmdCancel, Description: "Cancel the current report", Aliases: []string{"/cancelar"}},
		{Name: CmdDonation, Description: "How to donate"},
		{Name: CmdAdopt, Description: "How to adopt"},
	}
}

const (
	welcomeText = "🐾 Hi! I am the Huellitas UNEXPO bot. How can I help you?\n\n" +
		"/report (or /reportar) - Report an animal in danger\n" +
		"/cancel (or /cancelar) - Cancel the current report\n" +
		"/donacion - How to donate\n" +
		"/adoptar - How to adopt"

	donationText = "💖 Thank you for wanting to help!\n\n" +
		"You can donate through Pago Móvil:\n" +
		"Banco de Venezuela (0102)\n" +
		"Tlfn: 04241228086\n" +
		"C.I.: 6367083\n\n" +
		"Supplies (food, medicine, blankets) can be brought to UNEXPO, km 1, vía El Junquito, " +
		"La Yaguara, Parroquia Antímano, Municipio Libertador."

	adoptionText = "🏡 Our animals looking for a home are posted on Instagram: " +
		"[@huellitas_unexpo](https://www.instagram.com/huellitas_unexpo?igsh=MXFnc3pmM29vcGJyZw==)\n\n" +
		"Write to us there and we will guide you through the adoption."

	submittedText = "✅ Thank you! Your report was sent to the rescue team.\n\n" +
		"For emergencies call *04241228086*."

	deliveryFailedText = "❌ We could not deliver your report right now. " +
		"Your answers are kept: type 'Send' to try again or /cancel to stop."

	nothingToCancelText = "There is no report in progress. Use /report to start one."

	strayCommandText = "⚠️ You have a report in progress. Answer the question below or use /cancel to stop."

	unexpectedErrorText = "❌ Something went wrong with your report. Please start again with /report."
)
