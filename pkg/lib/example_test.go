package lib_test

import (
	"context"
	"fmt"

	"github.com/slok/dashstatus/pkg/lib"
)

// This example shows how to track an operation using the fake presenter for testing.
func Example_testing() {
	ctx := context.Background()

	fb, err := lib.New(lib.Config{Presenter: lib.PresenterFake})
	if err != nil {
		panic(err)
	}
	defer fb.Close()

	if _, err := fb.StartOperation(ctx, "import", "Importando dados", "Lendo arquivos..."); err != nil {
		panic(err)
	}
	fb.UpdateOperation(ctx, "import", 50, "")

	fmt.Printf("Active: %d\n", len(fb.ActiveOperations()))
	for _, e := range fb.Logs() {
		fmt.Printf("[%s] %s\n", e.Level, e.Message)
	}

	// Output:
	// Active: 1
	// [info] Iniciando operação: Importando dados
	// [info] Importando dados: 50% - Lendo arquivos...
}

// This example shows the ad-hoc notifications.
func Example_notifications() {
	ctx := context.Background()

	fb, err := lib.New(lib.Config{Presenter: lib.PresenterFake})
	if err != nil {
		panic(err)
	}
	defer fb.Close()

	_ = fb.Status(ctx, lib.KindSuccess, "Pronto", "Dados atualizados")
	_ = fb.Toast(ctx, lib.KindInfo, "Olá!")

	err = fb.Toast(ctx, lib.KindLoading, "Carregando...")
	fmt.Println(err != nil)

	// Output:
	// true
}
