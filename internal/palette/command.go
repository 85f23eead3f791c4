// Package palette parses the text commands typed into the terminal UI.
package palette

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeToggle  Type = "toggle"
	TypeShow    Type = "show"
	TypePreview Type = "preview"
	TypeReload  Type = "reload"
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

// Filter selects which checkboxes "show" lists.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterOpen      Filter = "open"
	FilterDone      Filter = "done"
	FilterRecurring Filter = "recurring"
)

func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterOpen, FilterDone, FilterRecurring:
		return true
	default:
		return false
	}
}

type ToggleArgs struct {
	Line int
}

type ShowArgs struct {
	Filter Filter
	Tag    string
}

const DefaultPreviewCount = 5

type PreviewArgs struct {
	Line  int
	Count int
}

type Command struct {
	Type    Type
	Raw     string
	Toggle  *ToggleArgs
	Show    *ShowArgs
	Preview *PreviewArgs
}

// Parse reads one palette command. Line numbers are 1-based as shown in the
// UI; a leading "/" is ignored.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeToggle:
		return parseToggle(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypePreview:
		return parsePreview(input, args)
	case TypeReload:
		return Command{Type: TypeReload, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseLine(name string, args []string) (int, error) {
	if len(args) == 0 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: name + " requires a line number"}
	}
	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || n <= 0 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s: invalid line %q", name, args[0])}
	}
	return n, nil
}

func parseToggle(raw string, args []string) (Command, error) {
	line, err := parseLine("toggle", args)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeToggle, Raw: raw, Toggle: &ToggleArgs{Line: line}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	show := &ShowArgs{Filter: FilterAll}
	for _, arg := range args {
		lower := strings.ToLower(arg)
		if strings.HasPrefix(lower, "tag:") {
			tag := strings.TrimSpace(arg[len("tag:"):])
			if tag != "" && !strings.HasPrefix(tag, "#") {
				tag = "#" + tag
			}
			show.Tag = tag
			continue
		}
		if f := Filter(lower); f.IsValid() {
			show.Filter = f
			continue
		}
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("show: unknown filter %q", arg)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: show}, nil
}

func parsePreview(raw string, args []string) (Command, error) {
	line, err := parseLine("preview", args)
	if err != nil {
		return Command{}, err
	}
	count := DefaultPreviewCount
	if len(args) > 1 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count <= 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("preview: invalid count %q", args[1])}
		}
	}
	return Command{Type: TypePreview, Raw: raw, Preview: &PreviewArgs{Line: line, Count: count}}, nil
}
