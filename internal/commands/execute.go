package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Complete func(CompleteArgs) (Result, error)
	Triage   func() (Result, error)
	Dismiss  func() (Result, error)
	Add      func(AddArgs) (Result, error)
	Filter   func(FilterArgs) (Result, error)
	Range    func(RangeArgs) (Result, error)
	Refresh  func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeComplete:
		if handlers.Complete == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "complete handler not configured"}
		}
		return handlers.Complete(*cmd.Complete)
	case TypeTriage:
		if handlers.Triage == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "triage handler not configured"}
		}
		return handlers.Triage()
	case TypeDismiss:
		if handlers.Dismiss == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "dismiss handler not configured"}
		}
		return handlers.Dismiss()
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add handler not configured"}
		}
		return handlers.Add(*cmd.Add)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "filter handler not configured"}
		}
		return handlers.Filter(*cmd.Filter)
	case TypeRange:
		if handlers.Range == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "range handler not configured"}
		}
		return handlers.Range(*cmd.Range)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "refresh handler not configured"}
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
