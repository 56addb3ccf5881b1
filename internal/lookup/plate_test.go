package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foundPage = `<html><body>
<table class="fipe-desktop">
<tr><th>Código</th><th>Modelo</th></tr>
<tr><td>004278-1</td><td>Gol 1.0 Plus</td></tr>
<tr><td>004279-0</td><td>Gol 1.0 Special</td></tr>
</table>
<table class="fipeTablePriceDetail">
<tr><td>Marca</td><td>VW</td></tr>
<tr><td>Modelo</td><td>Gol</td></tr>
<tr><td>Cor</td><td>Prata</td></tr>
<tr><td>Combustível</td><td>Gasolina</td></tr>
<tr><td>Ano</td><td>2011</td></tr>
<tr><td>Ano Modelo</td><td><strong>2012</strong></td></tr>
</table>
</body></html>`

const notFoundPage = `<html><body>
<div class="template-middle"><div><p>Veículo não encontrado</p></div></div>
</body></html>`

func newTestClient(url string) *Client {
	// High rate so tests never block on the limiter.
	return NewClient(url, WithRateLimit(60000))
}

func TestLookup_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/placa/ABC1D23", r.URL.Path)
		_, _ = w.Write([]byte(foundPage))
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL).Lookup(context.Background(), "ABC1D23")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gol 1.0 Plus", "Gol 1.0 Special"}, info.Models)
	assert.Equal(t, 2012, info.ManufactureYear)
}

func TestLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(notFoundPage))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "ABC1234")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLookup_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "ABC1234")
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestLookup_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "ABC1234")
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestLookup_BadPlate(t *testing.T) {
	c := newTestClient("http://unused.invalid")
	for _, plate := range []string{"", "ABC123", "AB12345", "1234ABC", "ABCD123"} {
		_, err := c.Lookup(context.Background(), plate)
		assert.True(t, errors.Is(err, ErrBadPlate), plate)
	}
}

func TestLookup_PlatePatterns(t *testing.T) {
	// Both the legacy ABC1234 and Mercosul ABC1D23 shapes are accepted.
	assert.True(t, plateRe.MatchString("ABC1234"))
	assert.True(t, plateRe.MatchString("abc1d23"))
	assert.False(t, plateRe.MatchString("ABC12345"))
}

func TestParsePage_MalformedDetailTable(t *testing.T) {
	page := `<table class="fipe-desktop">
<tr><th>Código</th><th>Modelo</th></tr>
<tr><td>1</td><td>Gol</td></tr>
</table>`
	_, err := parsePage(page)
	assert.True(t, errors.Is(err, ErrTransport))
}
