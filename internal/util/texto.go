package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OrdenarPtBR ordena in-place usando a colação do português brasileiro.
func OrdenarPtBR(itens []string) {
	c := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	c.SortStrings(itens)
}

// Dobrar remove acentos e caixa para comparações de busca ("Saúde" -> "saude").
func Dobrar(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, runes.Map(unicode.ToLower))
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
