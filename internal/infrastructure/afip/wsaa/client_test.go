package wsaa

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"encoding/xml"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

// testKeyPair genera un certificado autofirmado y su llave en PEM.
func testKeyPair(t *testing.T) (certPEM, keyPEM string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test-facturacion", Organization: []string{"Test SA"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	return certPEM, keyPEM
}

// ticketResponseXML arma un loginTicketResponse como el que devuelve WSAA.
func ticketResponseXML(token, sign string, expiresAt time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<loginTicketResponse version="1.0">
  <header>
    <source>CN=wsaahomo</source>
    <destination>CN=test-facturacion</destination>
    <uniqueId>123456</uniqueId>
    <generationTime>%s</generationTime>
    <expirationTime>%s</expirationTime>
  </header>
  <credentials>
    <token>%s</token>
    <sign>%s</sign>
  </credentials>
</loginTicketResponse>`,
		expiresAt.Add(-12*time.Hour).Format(time.RFC3339),
		expiresAt.Format(time.RFC3339),
		token, sign)
}

// loginCmsServer simula el endpoint loginCms y cuenta las llamadas.
func loginCmsServer(t *testing.T, hits *atomic.Int32, ticketXML string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		var escaped []byte
		buf, err := xml.Marshal(struct {
			XMLName xml.Name `xml:"x"`
			Body    string   `xml:",chardata"`
		}{Body: ticketXML})
		require.NoError(t, err)
		escaped = buf[len("<x>") : len(buf)-len("</x>")]

		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprintf(w, `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <loginCmsResponse><loginCmsReturn>%s</loginCmsReturn></loginCmsResponse>
  </soapenv:Body>
</soapenv:Envelope>`, escaped)
	}))
}

// ── TRA ───────────────────────────────────────────────────────────────────────

func TestBuildTRA_Layout(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)

	tra, err := BuildTRA("wsfe", now)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(tra))

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "loginTicketRequest", root.Tag)
	assert.Equal(t, "1.0", root.SelectAttrValue("version", ""))

	assert.Equal(t, fmt.Sprintf("%d", now.Unix()), root.FindElement("header/uniqueId").Text())
	assert.Equal(t, now.Add(-60*time.Second).Format(time.RFC3339), root.FindElement("header/generationTime").Text())
	assert.Equal(t, now.Add(60*time.Second).Format(time.RFC3339), root.FindElement("header/expirationTime").Text())
	assert.Equal(t, "wsfe", root.FindElement("service").Text())
}

func TestBuildTRA_ServicioVacio(t *testing.T) {
	_, err := BuildTRA("", time.Now())
	assert.Error(t, err)
}

func TestParseTicketResponse(t *testing.T) {
	expiresAt := time.Now().Add(11 * time.Hour).Truncate(time.Second)
	raw := ticketResponseXML("tok-abc", "sig-xyz", expiresAt)

	ticket, err := ParseTicketResponse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "tok-abc", ticket.Token)
	assert.Equal(t, "sig-xyz", ticket.Sign)
	assert.True(t, ticket.ExpiresAt.Equal(expiresAt))
	assert.Equal(t, raw, ticket.SourceXML)
	assert.True(t, ticket.Vigente(time.Now()))
}

func TestParseTicketResponse_Invalido(t *testing.T) {
	cases := map[string]string{
		"no es XML":       "esto no es XML <<",
		"raíz inesperada": `<?xml version="1.0"?><otraCosa/>`,
		"sin token":       `<?xml version="1.0"?><loginTicketResponse><header><expirationTime>2030-01-01T00:00:00-03:00</expirationTime></header><credentials><sign>s</sign></credentials></loginTicketResponse>`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTicketResponse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestTicket_Vigente(t *testing.T) {
	now := time.Now()

	vigente := &Ticket{Token: "t", ExpiresAt: now.Add(2 * time.Hour)}
	assert.True(t, vigente.Vigente(now))

	// Dentro del margen de seguridad cuenta como vencido.
	alBorde := &Ticket{Token: "t", ExpiresAt: now.Add(30 * time.Second)}
	assert.False(t, alBorde.Vigente(now))

	var nulo *Ticket
	assert.False(t, nulo.Vigente(now))
}

// ── Caché ─────────────────────────────────────────────────────────────────────

func TestTicketCache_PutGet(t *testing.T) {
	dir := t.TempDir()
	cache := newTicketCache(dir)
	now := time.Now()

	expiresAt := now.Add(11 * time.Hour).Truncate(time.Second)
	ticket := &Ticket{
		Token:     "tok",
		Sign:      "sig",
		ExpiresAt: expiresAt,
		SourceXML: ticketResponseXML("tok", "sig", expiresAt),
	}
	require.NoError(t, cache.put("wsfe", "20123456786", ticket))

	// El artefacto queda publicado con el nombre esperado y sin temporales sueltos.
	_, err := os.Stat(filepath.Join(dir, "TA-wsfe-20123456786.xml"))
	require.NoError(t, err)
	restos, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, restos)

	got := cache.get("wsfe", "20123456786", now)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.Token)

	// Otro proceso (otra instancia de caché) lo levanta desde disco.
	otra := newTicketCache(dir)
	got = otra.get("wsfe", "20123456786", now)
	require.NotNil(t, got)
	assert.Equal(t, "sig", got.Sign)

	// Otro servicio u otro CUIT no comparten ticket.
	assert.Nil(t, cache.get("wsfex", "20123456786", now))
	assert.Nil(t, cache.get("wsfe", "30712345678", now))
}

func TestTicketCache_ArchivoCorrupto(t *testing.T) {
	dir := t.TempDir()
	cache := newTicketCache(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "TA-wsfe-20123456786.xml"), []byte("<<basura"), 0o644))
	assert.Nil(t, cache.get("wsfe", "20123456786", time.Now()))
}

func TestTicketCache_Vencido(t *testing.T) {
	dir := t.TempDir()
	cache := newTicketCache(dir)
	now := time.Now()

	vencido := now.Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "TA-wsfe-20123456786.xml"),
		[]byte(ticketResponseXML("tok", "sig", vencido)), 0o644))

	assert.Nil(t, cache.get("wsfe", "20123456786", now))
}

// ── CMS ───────────────────────────────────────────────────────────────────────

func TestSignTRA(t *testing.T) {
	certPEM, keyPEM := testKeyPair(t)

	tra, err := BuildTRA("wsfe", time.Now())
	require.NoError(t, err)

	cms, err := SignTRA(tra, certPEM, keyPEM)
	require.NoError(t, err)
	assert.NotEmpty(t, cms)

	_, err = SignTRA(tra, "no es PEM", keyPEM)
	assert.Error(t, err)
	_, err = SignTRA(tra, certPEM, "no es PEM")
	assert.Error(t, err)
}

func TestVerifyKeyPair(t *testing.T) {
	certPEM, keyPEM := testKeyPair(t)
	assert.NoError(t, VerifyKeyPair(certPEM, keyPEM))

	otroCert, _ := testKeyPair(t)
	assert.Error(t, VerifyKeyPair(otroCert, keyPEM))
}

// ── Authenticate ──────────────────────────────────────────────────────────────

func TestClient_Authenticate_ReusaTicket(t *testing.T) {
	certPEM, keyPEM := testKeyPair(t)
	expiresAt := time.Now().Add(11 * time.Hour).Truncate(time.Second)

	var hits atomic.Int32
	server := loginCmsServer(t, &hits, ticketResponseXML("tok-1", "sig-1", expiresAt))
	defer server.Close()

	client := NewClient(t.TempDir(), 5*time.Second)
	client.EndpointOverride = server.URL

	creds := Credentials{
		CUIT:           "20123456786",
		CertificatePEM: certPEM,
		PrivateKeyPEM:  keyPEM,
		Environment:    EnvHomologacion,
	}

	ticket, err := client.Authenticate(context.Background(), "wsfe", creds, false)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", ticket.Token)
	assert.Equal(t, int32(1), hits.Load())

	// Segunda llamada: sale de la caché, sin red.
	ticket, err = client.Authenticate(context.Background(), "wsfe", creds, false)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", ticket.Token)
	assert.Equal(t, int32(1), hits.Load())

	// force descarta la caché y reautentica.
	_, err = client.Authenticate(context.Background(), "wsfe", creds, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	// Otro servicio requiere su propio ticket.
	_, err = client.Authenticate(context.Background(), "wsfex", creds, false)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_Authenticate_SOAPFault(t *testing.T) {
	certPEM, keyPEM := testKeyPair(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <soapenv:Fault>
      <faultcode>ns1:cms.cert.expired</faultcode>
      <faultstring>Certificado expirado</faultstring>
    </soapenv:Fault>
  </soapenv:Body>
</soapenv:Envelope>`)
	}))
	defer server.Close()

	client := NewClient(t.TempDir(), 5*time.Second)
	client.EndpointOverride = server.URL

	creds := Credentials{
		CUIT:           "20123456786",
		CertificatePEM: certPEM,
		PrivateKeyPEM:  keyPEM,
		Environment:    EnvHomologacion,
	}
	_, err := client.Authenticate(context.Background(), "wsfe", creds, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cms.cert.expired")
}

func TestClient_Authenticate_EntornoDesconocido(t *testing.T) {
	certPEM, keyPEM := testKeyPair(t)

	client := NewClient(t.TempDir(), 5*time.Second)
	creds := Credentials{
		CUIT:           "20123456786",
		CertificatePEM: certPEM,
		PrivateKeyPEM:  keyPEM,
		Environment:    "staging",
	}
	_, err := client.Authenticate(context.Background(), "wsfe", creds, false)
	assert.Error(t, err)
}
