package bot

const (
	msgHelpIntro = "This bot keeps a database of trust reports about peer-to-peer traders: " +
		"their phone numbers, bank account owners and external ids."

	msgCanceled      = "Current operation canceled"
	msgUnknownAction = "Unsupported action"
	msgUnknownCmd    = "Unknown command. Send /help for the list of commands."
	msgSlowDown      = "Too many requests, please slow down."

	msgNewReport      = "Forward me a message of the user who is reporting the trader or use /cancel to cancel"
	msgForwardHidden  = "The original sender of this message is hidden. Ask them to forward one of their own messages, or use /cancel to cancel."
	msgReportCreated  = "Created report %s! Please enter the trader information:"
	msgEditReport     = "Please send the Report # of the report you wish to edit or send /cancel to cancel"
	msgEditPick       = "Please choose the information to change:"
	msgDeleteReport   = "Please send the Report # of the report you wish to remove or send /cancel to cancel"
	msgReportDeleted  = "Deleted report %s!"
	msgBadReportID    = "Not a valid report number. Try again or use /cancel to abort."
	msgReportNotFound = "Could not find report number. Try again or use /cancel to abort."
	msgReportGone     = "This report no longer exists."
	msgChooseField    = "Please choose one of the options below or send /cancel if you're done."
	msgEnterField     = "Please enter %s"
	msgSendAttachment = "Please send a photo or file to attach to this report"
	msgFieldSaved     = "Add more info or send /cancel if you're done."
	msgWantText       = "Please send %s as a text message or use /cancel to abort."
	msgWantAttachment = "Please send a photo or a file, or use /cancel to abort."

	msgAddOperator       = "Forward me a message of the user you want to add as operator or send /cancel to cancel"
	msgOperatorAdded     = "Successfully added operator"
	msgOperatorExists    = "This user is already an operator"
	msgRemoveOperator    = "Forward me a message of the operator you want to remove, send their user id, or send /cancel to cancel"
	msgOperatorRemoved   = "Successfully removed operator"
	msgOperatorProtected = "Super operators cannot be removed"
	msgNotOperator       = "This user is not an operator. Try again or use /cancel to abort."
	msgBadUserID         = "Send a numeric user id or forward a message of the operator, or use /cancel to abort."

	msgSearchPrompt  = "Enter search query:"
	msgSearchLate    = "Please send your /search query within %d seconds."
	msgSearchTooLong = "That query is too long. Enter a shorter search query:"
	msgSearchText    = "Please send the search query as text."
	msgNoResults     = "No search results"

	snapshotFileName = "trustworthy.yaml"
)
