package bot

// Incoming is a text message received from a user
type Incoming struct {
	UpdateID  int
	ChatID    int64
	UserID    int64
	MessageID int
	Username  string
	Text      string
}

// Audio describes a file attachment reply
type Audio struct {
	Path      string
	FileName  string
	Title     string
	Performer string
}

// Messenger is the outbound side of the chat transport
type Messenger interface {
	// SendText replies to replyTo (0 for none) and returns the new message id
	SendText(chatID int64, replyTo int, text string) (int, error)
	EditText(chatID int64, messageID int, text string) error
	Delete(chatID int64, messageID int) error
	SendAudio(chatID int64, replyTo int, audio Audio) error
}
