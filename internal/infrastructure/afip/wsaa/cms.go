// Firma CMS (PKCS#7) del TRA con el certificado y la llave privada de la empresa.

package wsaa

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"go.mozilla.org/pkcs7"
	"golang.org/x/crypto/pkcs12"
)

// SignTRA firma el TRA como mensaje CMS con el par certificado/llave en PEM y
// devuelve el CMS en Base64, listo para el elemento in0 de loginCms.
func SignTRA(tra []byte, certificatePEM, privateKeyPEM string) (string, error) {
	cert, err := parseCertificatePEM(certificatePEM)
	if err != nil {
		return "", err
	}
	key, err := parsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return "", err
	}

	signed, err := pkcs7.NewSignedData(tra)
	if err != nil {
		return "", fmt.Errorf("wsaa: inicializar CMS: %w", err)
	}
	if err := signed.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return "", fmt.Errorf("wsaa: firmar CMS: %w", err)
	}
	der, err := signed.Finish()
	if err != nil {
		return "", fmt.Errorf("wsaa: serializar CMS: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// LoadCredentialsFromP12 convierte un .p12/.pfx a par PEM (certificado, llave).
// Útil para cargar credenciales AFIP emitidas como PKCS#12.
func LoadCredentialsFromP12(data []byte, password string) (certPEM, keyPEM string, err error) {
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return "", "", fmt.Errorf("wsaa: decodificar p12: %w", err)
	}
	rsaKey, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return "", "", fmt.Errorf("wsaa: la llave del p12 debe ser RSA")
	}

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(rsaKey),
	}))
	return certPEM, keyPEM, nil
}

// VerifyKeyPair verifica que el certificado y la llave formen un par válido.
// Se usa en la validación de credenciales de la empresa antes del round-trip WSAA.
func VerifyKeyPair(certificatePEM, privateKeyPEM string) error {
	_, err := tls.X509KeyPair([]byte(certificatePEM), []byte(privateKeyPEM))
	if err != nil {
		return fmt.Errorf("wsaa: certificado y llave no forman un par válido: %w", err)
	}
	return nil
}

func parseCertificatePEM(certificatePEM string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(certificatePEM)))
	if block == nil {
		return nil, fmt.Errorf("wsaa: certificado PEM inválido")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("wsaa: parsear certificado: %w", err)
	}
	return cert, nil
}

func parsePrivateKeyPEM(privateKeyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(privateKeyPEM)))
	if block == nil {
		return nil, fmt.Errorf("wsaa: llave privada PEM inválida")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("wsaa: parsear llave privada: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("wsaa: la llave privada debe ser RSA")
	}
	return rsaKey, nil
}
