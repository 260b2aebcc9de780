package main

import (
	"fmt"
	"os"

	"github.com/gestaozabele/indicadores/internal/auth"
	"github.com/gestaozabele/indicadores/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		os.Exit(1)
	}

	if err := util.ValidatePassword(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "aviso: %v\n", err)
	}

	hash, err := auth.HashSenha(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao gerar hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
