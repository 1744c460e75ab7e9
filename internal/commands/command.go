// Package commands parses the slash commands of the review screen.
package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeConfirm Type = "confirm"
	TypeNote    Type = "note"
	TypeSkip    Type = "skip"
	TypeAll     Type = "all"
	TypeReport  Type = "report"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ConfirmArgs confirms entry n, optionally overriding the completion
// percentage.
type ConfirmArgs struct {
	Index      int
	Completion int // -1 keeps the inferred value
}

type NoteArgs struct {
	Index int
	Text  string
}

type SkipArgs struct {
	Index int
}

type Command struct {
	Type    Type
	Raw     string
	Confirm *ConfirmArgs
	Note    *NoteArgs
	Skip    *SkipArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeConfirm:
		return parseConfirm(input, args)
	case TypeNote:
		return parseNote(input, args)
	case TypeSkip:
		return parseSkip(input, args)
	case TypeAll:
		return Command{Type: TypeAll, Raw: input}, nil
	case TypeReport:
		return Command{Type: TypeReport, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseConfirm(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "confirm requires an entry number"}
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return Command{}, err
	}
	completion := -1
	if len(args) > 1 {
		pct, err := strconv.Atoi(args[1])
		if err != nil || pct < 0 || pct > 100 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "completion must be 0-100"}
		}
		completion = pct
	}
	return Command{Type: TypeConfirm, Raw: raw, Confirm: &ConfirmArgs{Index: index, Completion: completion}}, nil
}

func parseNote(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "note requires an entry number and text"}
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return Command{}, err
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	return Command{Type: TypeNote, Raw: raw, Note: &NoteArgs{Index: index, Text: text}}, nil
}

func parseSkip(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "skip requires an entry number"}
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeSkip, Raw: raw, Skip: &SkipArgs{Index: index}}, nil
}

func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("entry number %q must be a positive integer", arg)}
	}
	return n, nil
}
