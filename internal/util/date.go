package util

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	reDataBR  = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	reDataISO = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	naoDigito = regexp.MustCompile(`\D`)
)

// ErrDataInvalida indica data fora do formato DD/MM/AAAA ou AAAA-MM-DD.
var ErrDataInvalida = errors.New("data inválida (use DD/MM/AAAA)")

var diasPorMes = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ValidarData aceita somente DD/MM/AAAA com calendário válido entre 1900 e 2100.
func ValidarData(s string) bool {
	m := reDataBR.FindStringSubmatch(s)
	if m == nil {
		return false
	}

	dia, _ := strconv.Atoi(m[1])
	mes, _ := strconv.Atoi(m[2])
	ano, _ := strconv.Atoi(m[3])

	if mes < 1 || mes > 12 {
		return false
	}
	if dia < 1 || dia > 31 {
		return false
	}
	if ano < 1900 || ano > 2100 {
		return false
	}

	limite := diasPorMes[mes-1]
	if mes == 2 && bissexto(ano) {
		limite = 29
	}
	return dia <= limite
}

// ValidarISO aceita AAAA-MM-DD com as mesmas regras de calendário de ValidarData.
func ValidarISO(s string) bool {
	if !reDataISO.MatchString(s) {
		return false
	}
	return ValidarData(ParaBR(s))
}

// ParaISO converte DD/MM/AAAA em AAAA-MM-DD. Não valida: chame ValidarData antes.
func ParaISO(s string) string {
	partes := strings.Split(s, "/")
	if len(partes) != 3 {
		return ""
	}
	return partes[2] + "-" + partes[1] + "-" + partes[0]
}

// ParaBR converte AAAA-MM-DD em DD/MM/AAAA; entrada vazia devolve vazio.
func ParaBR(iso string) string {
	if iso == "" {
		return ""
	}
	partes := strings.Split(iso, "-")
	if len(partes) != 3 {
		return ""
	}
	return partes[2] + "/" + partes[1] + "/" + partes[0]
}

// NormalizarData aceita DD/MM/AAAA ou AAAA-MM-DD e devolve a forma ISO.
func NormalizarData(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		if !ValidarData(s) {
			return "", ErrDataInvalida
		}
		return ParaISO(s), nil
	}
	if !ValidarISO(s) {
		return "", ErrDataInvalida
	}
	return s, nil
}

// AutoFormatarData aplica a máscara DD/MM/AAAA sobre o que foi digitado até agora.
func AutoFormatarData(parcial string) string {
	v := naoDigito.ReplaceAllString(parcial, "")
	if len(v) > 8 {
		v = v[:8]
	}
	if len(v) >= 2 {
		v = v[:2] + "/" + v[2:]
	}
	if len(v) >= 5 {
		v = v[:5] + "/" + v[5:]
	}
	return v
}

func bissexto(ano int) bool {
	return (ano%4 == 0 && ano%100 != 0) || ano%400 == 0
}
