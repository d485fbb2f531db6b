// Package lib provides a Go SDK to give dashboard-style feedback to the user
// from any Go program.
//
// The SDK exposes the same feedback layer the dashstatus server uses: tracked
// operations with a progress card, timed status cards, toasts and a bounded
// log console.
//
// # Quick Start
//
// Create the feedback client and track a long running operation:
//
//	fb, err := lib.New(lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer fb.Close()
//
//	_, err = fb.StartOperation(ctx, "import", "Importando dados", "Lendo arquivos...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fb.UpdateOperation(ctx, "import", 50, "Metade concluída")
//	fb.CompleteOperation(ctx, "import", true, "Importação finalizada")
//
// # Presenters
//
// The feedback is rendered by a presenter:
//
//   - [PresenterTerminal]: Writes cards, progress bars, toasts and console
//     lines to [Config].Output (stderr by default).
//   - [PresenterFake]: Renders nothing. Use it on tests and check the result
//     with [Feedback.Logs] and [Feedback.ActiveOperations].
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotValid]: Invalid input (e.g. an empty operation ID or an unknown kind).
//
// # Thread Safety
//
// A [Feedback] is safe for concurrent use from multiple goroutines.
package lib
