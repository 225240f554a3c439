package cli

import (
	"context"

	"github.com/erp/adminpanel/internal/application/form"
	"github.com/erp/adminpanel/internal/application/mutation"
)

// submit runs runner with the form's validated payload. Nothing is sent
// when the form is invalid.
func submit[In, Out any](ctx context.Context, f *form.Controller[In], runner *mutation.Runner[In, Out]) (Out, error) {
	var out Out
	err := f.Submit(ctx, func(ctx context.Context, in In) error {
		var err error
		out, err = runner.Run(ctx, in)
		return err
	})
	return out, err
}
