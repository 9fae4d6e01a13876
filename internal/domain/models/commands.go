package models

import "strings"

// CommandType enumerates the text commands a farmer can send over WhatsApp.
type CommandType string

const (
	CommandIncome   CommandType = "income"
	CommandExpense  CommandType = "expense"
	CommandBalance  CommandType = "balance"
	CommandAdvisory CommandType = "advisory"
	CommandUnknown  CommandType = "unknown"
)

// Command represents a parsed farmer instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. A leading slash is
// optional. Only the command word is case-folded; arguments keep the
// farmer's spelling.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return cmd
	}

	switch head := CommandType(strings.ToLower(strings.TrimPrefix(tokens[0], "/"))); head {
	case CommandIncome, CommandExpense, CommandBalance, CommandAdvisory:
		cmd.Type = head
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
