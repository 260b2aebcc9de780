package util

import (
	"regexp"
	"strconv"
)

var reDigitos = regexp.MustCompile(`\d+`)

// NumeroDoCodigo extrai o último grupo numérico do código ("IND-003" -> 3, "A12B7" -> 7).
func NumeroDoCodigo(codigo string) (int64, bool) {
	grupos := reDigitos.FindAllString(codigo, -1)
	if len(grupos) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(grupos[len(grupos)-1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ProximoCodigo sugere o próximo código sequencial a partir dos códigos existentes.
// Sem nenhum grupo numérico, cai para quantidade+1.
func ProximoCodigo(codigos []string) string {
	var (
		max        int64
		encontrado bool
	)
	for _, c := range codigos {
		n, ok := NumeroDoCodigo(c)
		if !ok {
			continue
		}
		encontrado = true
		if n > max {
			max = n
		}
	}

	if !encontrado {
		return strconv.Itoa(len(codigos) + 1)
	}
	return strconv.FormatInt(max+1, 10)
}
