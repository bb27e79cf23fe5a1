package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add       func(AddArgs) (Result, error)
	Done      func(TaskArgs) (Result, error)
	Delete    func(TaskArgs) (Result, error)
	Select    func(TaskArgs) (Result, error)
	Start     func() (Result, error)
	Pause     func() (Result, error)
	Reset     func() (Result, error)
	StopAlarm func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		return runTask(cmd, handlers.Done)
	case TypeDelete:
		return runTask(cmd, handlers.Delete)
	case TypeSelect:
		return runTask(cmd, handlers.Select)
	case TypeStart:
		return run(cmd.Type, handlers.Start)
	case TypePause:
		return run(cmd.Type, handlers.Pause)
	case TypeReset:
		return run(cmd.Type, handlers.Reset)
	case TypeStopAlarm:
		return run(cmd.Type, handlers.StopAlarm)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func runTask(cmd Command, h func(TaskArgs) (Result, error)) (Result, error) {
	if h == nil {
		return Result{}, missing(cmd.Type)
	}
	if cmd.Task == nil {
		return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires one task reference", cmd.Type)}
	}
	return h(*cmd.Task)
}

func run(typ Type, h func() (Result, error)) (Result, error) {
	if h == nil {
		return Result{}, missing(typ)
	}
	return h()
}

func missing(typ Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", typ)}
}
