package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Confirm func(ConfirmArgs) (Result, error)
	Note    func(NoteArgs) (Result, error)
	Skip    func(SkipArgs) (Result, error)
	All     func() (Result, error)
	Report  func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeConfirm:
		if handlers.Confirm == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "confirm handler not configured"}
		}
		return handlers.Confirm(*cmd.Confirm)
	case TypeNote:
		if handlers.Note == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "note handler not configured"}
		}
		return handlers.Note(*cmd.Note)
	case TypeSkip:
		if handlers.Skip == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "skip handler not configured"}
		}
		return handlers.Skip(*cmd.Skip)
	case TypeAll:
		if handlers.All == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "all handler not configured"}
		}
		return handlers.All()
	case TypeReport:
		if handlers.Report == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "report handler not configured"}
		}
		return handlers.Report()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
