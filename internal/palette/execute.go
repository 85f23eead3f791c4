package palette

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Toggle  func(ToggleArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	Preview func(PreviewArgs) (Result, error)
	Reload  func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeToggle:
		if handlers.Toggle == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Toggle(*cmd.Toggle)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	case TypePreview:
		if handlers.Preview == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Preview(*cmd.Preview)
	case TypeReload:
		if handlers.Reload == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Reload()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
