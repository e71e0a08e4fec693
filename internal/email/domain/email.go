package domain

// NoSubject is shown when a message carries no Subject header.
const NoSubject = "(No Subject)"

// Email is the read-only view of one Gmail message addressed to a virtual
// inbox. It is rebuilt on every fetch; only its id and read flag are stored.
type Email struct {
	ID         string `json:"id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Subject    string `json:"subject"`
	ReceivedAt string `json:"receivedAt"`
	Body       string `json:"body"`
	IsHTML     bool   `json:"isHtml"`
	Preview    string `json:"preview"`
	IsRead     bool   `json:"isRead"`
}

// Inbox is a virtual inbox: a derived address used only as a filter key.
type Inbox struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Address returns the lower-cased name@domain form.
func (i Inbox) Address() string {
	return BuildAddress(i.Name, i.Domain)
}
