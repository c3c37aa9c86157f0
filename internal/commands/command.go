package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeComplete Type = "complete"
	TypeTriage   Type = "triage"
	TypeDismiss  Type = "dismiss"
	TypeAdd      Type = "add"
	TypeFilter   Type = "filter"
	TypeRange    Type = "range"
	TypeRefresh  Type = "refresh"
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

type CompleteArgs struct {
	Notes string
}

type AddArgs struct {
	Title string
}

type FilterArgs struct {
	TaskType string
}

type RangeArgs struct {
	Preset string
}

type Command struct {
	Type     Type
	Raw      string
	Complete *CompleteArgs
	Add      *AddArgs
	Filter   *FilterArgs
	Range    *RangeArgs
}

// Parse turns a palette line like "/complete left a voicemail" into a
// command. Complete, triage, and dismiss act on the current selection.
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
	case TypeComplete:
		return parseComplete(input, args)
	case TypeTriage:
		return Command{Type: TypeTriage, Raw: input}, nil
	case TypeDismiss:
		return Command{Type: TypeDismiss, Raw: input}, nil
	case TypeAdd:
		return parseAdd(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeRange:
		return parseRange(input, args)
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseComplete(raw string, args []string) (Command, error) {
	notes := strings.TrimSpace(strings.Join(args, " "))
	if notes == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "complete requires notes"}
	}
	return Command{Type: TypeComplete, Raw: raw, Complete: &CompleteArgs{Notes: notes}}, nil
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires a task type or 'all'"}
	}
	taskType := strings.ToLower(args[0])
	switch taskType {
	case "all", "call", "email", "text", "meeting", "send_mailer", "other":
		return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{TaskType: taskType}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown task type: %s", taskType)}
	}
}

func parseRange(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "range requires a preset"}
	}
	preset := strings.ToLower(args[0])
	switch preset {
	case "all", "7days", "30days":
		return Command{Type: TypeRange, Raw: raw, Range: &RangeArgs{Preset: preset}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown range preset: %s", preset)}
	}
}
