package dispatcher

import (
	"fmt"

	"github.com/dshills/calcshell/internal/calc"
	"github.com/dshills/calcshell/internal/dispatcher/handler"
	"github.com/dshills/calcshell/internal/plugin"
)

// OperationHandler adapts a plugin.Operation to the command table. It
// checks the operand count, coerces each token, and returns the value as a
// calculation to be recorded.
type OperationHandler struct {
	Op plugin.Operation
}

// NewOperationHandler creates an OperationHandler for op.
func NewOperationHandler(op plugin.Operation) *OperationHandler {
	return &OperationHandler{Op: op}
}

// Handle implements handler.Handler.
func (h *OperationHandler) Handle(cmd handler.Command) handler.Result {
	op := h.Op
	if op.Fn == nil {
		return handler.Errorf("operation %s has no implementation", cmd.Name)
	}

	if op.Arity >= 0 && len(cmd.Args) != op.Arity {
		return handler.Error(fmt.Errorf("%w: %s expects %d operand(s), got %d",
			calc.ErrInvalidArgument, cmd.Name, op.Arity, len(cmd.Args)))
	}

	args, err := h.coerce(cmd.Args)
	if err != nil {
		return handler.Error(err)
	}

	value, err := op.Fn(args...)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Computed(cmd.Name, value, args...)
}

func (h *OperationHandler) coerce(tokens []string) ([]float64, error) {
	args := make([]float64, len(tokens))
	for i, tok := range tokens {
		if h.Op.Integer {
			n, err := calc.ParseInteger(tok)
			if err != nil {
				return nil, err
			}
			args[i] = float64(n)
			continue
		}

		v, err := calc.ParseReal(tok)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// Description implements handler.Describer.
func (h *OperationHandler) Description() string {
	if h.Op.Description != "" {
		return h.Op.Description
	}
	return usage(h.Op)
}

// usage renders a synopsis from the operation's arity.
func usage(op plugin.Operation) string {
	switch {
	case op.Arity < 0:
		return op.Name + " <x>..."
	case op.Arity == 0:
		return op.Name
	case op.Arity == 1:
		return op.Name + " <x>"
	case op.Arity == 2:
		return op.Name + " <a> <b>"
	default:
		return fmt.Sprintf("%s <%d operands>", op.Name, op.Arity)
	}
}
