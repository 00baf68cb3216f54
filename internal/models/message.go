package models

type Sender int

const (
	User Sender = iota
	Bot
	Program
)

func (s Sender) String() string {
	switch s {
	case User:
		return "user"
	case Bot:
		return "bot"
	case Program:
		return "program"
	}
	return "unknown"
}

// Message is one transcript entry. Program messages are banner lines and
// never come from a send.
type Message struct {
	Content string
	Sender  Sender
}
