package hutch

import (
	"crypto/tls"
	"crypto/x509"
	"os"
)

// CreateTLSConfig builds a tls.Config from a root CA PEM and a local certificate/key pair.
func CreateTLSConfig(pemLocation, localLocation string) (*tls.Config, error) {
	cfg := new(tls.Config)
	cfg.RootCAs = x509.NewCertPool()

	ca, err := os.ReadFile(pemLocation)
	if err != nil {
		return nil, err
	}

	cfg.RootCAs.AppendCertsFromPEM(ca)

	cert, err := tls.LoadX509KeyPair(localLocation, localLocation)
	if err != nil {
		return nil, err
	}

	cfg.Certificates = append(cfg.Certificates, cert)
	return cfg, nil
}
