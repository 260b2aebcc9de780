package model

import "testing"

func TestParsePerfil(t *testing.T) {
	cases := map[string]Perfil{
		"":        PerfilLeitor,
		"adm":     PerfilADM,
		" LIDER ": PerfilLider,
		"root":    PerfilLeitor,
		"GESTAO":  PerfilGestao,
	}
	for in, want := range cases {
		if got := ParsePerfil(in); got != want {
			t.Errorf("ParsePerfil(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClasseSetorCiclica(t *testing.T) {
	want := []string{"blue", "green", "purple", "red", "blue"}
	for i, w := range want {
		if got := ClasseSetor(i); got != w {
			t.Fatalf("ClasseSetor(%d) = %q, want %q", i, got, w)
		}
	}
}

func TestIndicadorIsData(t *testing.T) {
	date := "date"
	kg := "kg"
	if !(Indicador{Tipo: "date"}).IsData() {
		t.Fatal("tipo date should be a date indicator")
	}
	if !(Indicador{Tipo: "text", Unidade: &date}).IsData() {
		t.Fatal("unidade date should be a date indicator")
	}
	if (Indicador{Tipo: "text", Unidade: &kg}).IsData() {
		t.Fatal("kg is not a date indicator")
	}
}

func TestNivel(t *testing.T) {
	if NormalizarNivel(0) != 1 || NormalizarNivel(7) != 1 || NormalizarNivel(4) != 4 {
		t.Fatal("NormalizarNivel out of range handling")
	}
	if got := RotuloNivel(3); got != "3 - LIDER" {
		t.Fatalf("RotuloNivel(3) = %q", got)
	}
}
