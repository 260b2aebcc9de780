package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxBody = 1 << 20

var errJSONInvalido = errors.New("JSON inválido")

// corpo guarda os campos crus do JSON recebido, distinguindo ausente de null.
type corpo map[string]json.RawMessage

func lerCorpo(r *http.Request) (corpo, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, errJSONInvalido
	}
	c := corpo{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errJSONInvalido
	}
	return c, nil
}

func (c corpo) cru(chaves ...string) (json.RawMessage, bool) {
	for _, k := range chaves {
		if v, ok := c[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func nulo(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// texto devolve o primeiro campo presente; null conta como ausente.
func (c corpo) texto(chaves ...string) *string {
	raw, ok := c.cru(chaves...)
	if !ok || nulo(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if json.Unmarshal(raw, &n) != nil {
			return nil
		}
		s = n.String()
	}
	return &s
}

func (c corpo) textoOuVazio(chaves ...string) string {
	if s := c.texto(chaves...); s != nil {
		return *s
	}
	return ""
}

// inteiro aceita número ou string numérica; limpar indica null explícito.
func (c corpo) inteiro(chaves ...string) (v *int64, limpar bool, err error) {
	raw, ok := c.cru(chaves...)
	if !ok {
		return nil, false, nil
	}
	if nulo(raw) {
		return nil, true, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return nil, false, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, true, nil
		}
		n = json.Number(s)
	}
	i, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return nil, false, err
		}
		i = int64(f)
	}
	return &i, false, nil
}

// decimal aceita número ou string com vírgula ou ponto.
func (c corpo) decimal(chaves ...string) (*float64, error) {
	raw, ok := c.cru(chaves...)
	if !ok || nulo(raw) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// booleano aceita true/false ou 0/1.
func (c corpo) booleano(chaves ...string) (*bool, error) {
	raw, ok := c.cru(chaves...)
	if !ok || nulo(raw) {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	b = n != 0
	return &b, nil
}

func paramID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// querySetor lê setorId ou setor_id da query; ausente ou inválido vale zero.
func querySetor(r *http.Request) int64 {
	q := r.URL.Query()
	v := q.Get("setorId")
	if v == "" {
		v = q.Get("setor_id")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
