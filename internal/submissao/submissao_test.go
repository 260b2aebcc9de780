package submissao

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gestaozabele/indicadores/internal/model"
)

func ptr[T any](v T) *T { return &v }

func indicadoresBase() []model.Indicador {
	return []model.Indicador{
		{ID: 10, Codigo: "IND-001", Nome: "Data de referência", Tipo: "date"},
		{ID: 11, Codigo: "IND-002", Nome: "Atendimentos", Tipo: "number", Unidade: ptr("un"), Meta: ptr(120.0), Valor: ptr("98")},
		{ID: 12, Codigo: "", Nome: "Observações", Tipo: "text"},
		{ID: 13, Codigo: "IND-004", Nome: "Receita", Tipo: "number", ReadOnly: true, Valor: ptr("1000")},
	}
}

var agora = time.Date(2025, time.June, 18, 10, 0, 0, 0, time.UTC)

func TestResolverPeriodo(t *testing.T) {
	cases := []struct {
		name    string
		data    *string
		setor   string
		want    string
		wantErr error
	}{
		{name: "sem data usa mes corrente", want: "2025-06"},
		{name: "indicador BR", data: ptr("15/03/2025"), want: "2025-03"},
		{name: "indicador ISO", data: ptr("2024-12-01"), want: "2024-12"},
		{name: "periodo do setor", setor: "01/02/2025", want: "2025-02"},
		{name: "indicador vence setor", data: ptr("10/01/2025"), setor: "01/02/2025", want: "2025-01"},
		{name: "indicador vazio cai no setor", data: ptr("  "), setor: "2025-04-30", want: "2025-04"},
		{name: "data invalida", data: ptr("31/02/2025"), wantErr: ErrPeriodoInvalido},
		{name: "setor invalido", setor: "2025/01", wantErr: ErrPeriodoInvalido},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inds := indicadoresBase()
			inds[0].Valor = tc.data
			got, err := ResolverPeriodo(inds, tc.setor, agora)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ResolverPeriodo = %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestResolverPeriodoPorUnidadeDate(t *testing.T) {
	inds := []model.Indicador{{ID: 1, Tipo: "text", Unidade: ptr("date"), Valor: ptr("05/11/2024")}}
	got, err := ResolverPeriodo(inds, "", agora)
	if err != nil || got != "2024-11" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestMontarValoresExcluiReadOnlyEPeriodo(t *testing.T) {
	valores := MontarValores(indicadoresBase())
	if len(valores) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(valores), valores)
	}
	for _, v := range valores {
		if v.IndicadorID == 10 || v.IndicadorID == 13 {
			t.Fatalf("indicador %d não deveria estar no payload", v.IndicadorID)
		}
	}

	if valores[0].IndicadorCodigo != "IND-002" || valores[0].Unidade == nil || *valores[0].Unidade != "un" {
		t.Fatalf("entrada inesperada: %+v", valores[0])
	}
	if valores[1].IndicadorCodigo != "12" {
		t.Fatalf("codigo deve cair para o id, got %q", valores[1].IndicadorCodigo)
	}
	if valores[1].Valor != nil {
		t.Fatal("valor não preenchido deve ser nulo")
	}
}

func TestMontarEnvioJSON(t *testing.T) {
	u := &model.Usuario{ID: 3, Email: "ana@empresa.com", Nome: "Ana", Nivel: 2, Perfil: "editor"}
	envio := MontarEnvio(model.Setor{ID: 7, Nome: "Financeiro"}, u, "2025-06", indicadoresBase())

	raw, err := json.Marshal(envio)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	for _, want := range []string{
		`"setorId":7`,
		`"setorNome":"Financeiro"`,
		`"funcionarioEmail":"ana@empresa.com"`,
		`"funcionarioPerfil":"EDITOR"`,
		`"periodo":"2025-06"`,
		`"indicadorCodigo":"IND-002"`,
		`"valor":null`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("payload sem %s: %s", want, body)
		}
	}
}
