// Package status defines checkbox lifecycle states and the registry that maps
// checkbox symbols to them.
package status

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrInvalidType   = errors.New("status: invalid status type")
	ErrInvalidSymbol = errors.New("status: symbol must be a single character")
)

type Type string

const (
	TypeTodo       Type = "TODO"
	TypeDone       Type = "DONE"
	TypeInProgress Type = "IN_PROGRESS"
	TypeCancelled  Type = "CANCELLED"
	TypeNonTask    Type = "NON_TASK"
	TypeEmpty      Type = "EMPTY"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeTodo, TypeDone, TypeInProgress, TypeCancelled, TypeNonTask, TypeEmpty:
		return true
	default:
		return false
	}
}

// Status is the state of a checkbox, written as the character between the
// brackets of "- [ ]". NextSymbol names the status a toggle moves to.
type Status struct {
	Symbol             string `json:"symbol"`
	Name               string `json:"name"`
	NextSymbol         string `json:"next_symbol"`
	AvailableAsCommand bool   `json:"available_as_command"`
	Type               Type   `json:"type"`
}

// Empty is returned by lookups that find nothing.
var Empty = Status{Type: TypeEmpty, AvailableAsCommand: true}

func Todo() Status {
	return Status{Symbol: " ", Name: "Todo", NextSymbol: "x", AvailableAsCommand: true, Type: TypeTodo}
}

func Done() Status {
	return Status{Symbol: "x", Name: "Done", NextSymbol: " ", AvailableAsCommand: true, Type: TypeDone}
}

func InProgress() Status {
	return Status{Symbol: "/", Name: "In Progress", NextSymbol: "x", AvailableAsCommand: true, Type: TypeInProgress}
}

func Cancelled() Status {
	return Status{Symbol: "-", Name: "Cancelled", NextSymbol: " ", AvailableAsCommand: true, Type: TypeCancelled}
}

// Unknown stands in for a symbol nobody registered, so the symbol survives a
// parse and re-serialize unchanged.
func Unknown(symbol string) Status {
	return Status{Symbol: symbol, Name: "Unknown", NextSymbol: "x", AvailableAsCommand: false, Type: TypeTodo}
}

func (s Status) IsCompleted() bool {
	return s.Type == TypeDone
}

func (s Status) IsEmpty() bool {
	return s.Type == TypeEmpty
}

// Identical reports whether every field of s matches other.
func (s Status) Identical(other Status) bool {
	return s == other
}

func (s Status) Validate() error {
	if utf8.RuneCountInString(s.Symbol) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, s.Symbol)
	}
	if s.NextSymbol != "" && utf8.RuneCountInString(s.NextSymbol) != 1 {
		return fmt.Errorf("%w: next %q", ErrInvalidSymbol, s.NextSymbol)
	}
	if !s.Type.IsValid() || s.Type == TypeEmpty {
		return fmt.Errorf("%w: %q", ErrInvalidType, s.Type)
	}
	return nil
}

func (s Status) String() string {
	return fmt.Sprintf("[%s] %s", s.Symbol, s.Name)
}
