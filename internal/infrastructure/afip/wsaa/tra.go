// Construcción del TRA (Ticket Request Access) y parseo del loginTicketResponse.

package wsaa

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
)

// tiempo de gracia alrededor de la generación del TRA: AFIP rechaza tickets
// con generationTime en el futuro o expirationTime vencido (tolerancia al skew).
const traSkew = 60 * time.Second

// BuildTRA genera el XML del Login Ticket Request para el servicio indicado:
// uniqueId único, generationTime = now − 60 s, expirationTime = now + 60 s.
func BuildTRA(service string, now time.Time) ([]byte, error) {
	if service == "" {
		return nil, fmt.Errorf("wsaa: servicio vacío para el TRA")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(fmt.Sprintf("%d", now.Unix()))
	header.CreateElement("generationTime").SetText(now.Add(-traSkew).Format(time.RFC3339))
	header.CreateElement("expirationTime").SetText(now.Add(traSkew).Format(time.RFC3339))

	root.CreateElement("service").SetText(service)

	doc.Indent(2)
	return doc.WriteToBytes()
}

// ParseTicketResponse extrae token, sign y expirationTime del XML
// loginTicketResponse devuelto por WSAA.
func ParseTicketResponse(xmlBytes []byte) (*Ticket, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("wsaa: parsear loginTicketResponse: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "loginTicketResponse" {
		return nil, fmt.Errorf("wsaa: respuesta inesperada (no es loginTicketResponse)")
	}

	token := root.FindElement("credentials/token")
	sign := root.FindElement("credentials/sign")
	expiration := root.FindElement("header/expirationTime")
	generation := root.FindElement("header/generationTime")
	if token == nil || sign == nil || expiration == nil {
		return nil, fmt.Errorf("wsaa: loginTicketResponse incompleto (falta token, sign o expirationTime)")
	}

	expiresAt, err := time.Parse(time.RFC3339, expiration.Text())
	if err != nil {
		return nil, fmt.Errorf("wsaa: expirationTime inválido %q: %w", expiration.Text(), err)
	}
	var generatedAt time.Time
	if generation != nil {
		generatedAt, _ = time.Parse(time.RFC3339, generation.Text())
	}

	return &Ticket{
		Token:       token.Text(),
		Sign:        sign.Text(),
		GeneratedAt: generatedAt,
		ExpiresAt:   expiresAt,
		SourceXML:   string(xmlBytes),
	}, nil
}
