package telemetry

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrNoCACerts = errors.New("no CA certificates found in the bundle")

// getTLSConfig builds the exporter TLS settings from a base64 encoded PEM bundle.
func getTLSConfig(caCertsBase64 string) (*tls.Config, error) {
	pem, err := base64.StdEncoding.DecodeString(caCertsBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding CA certificates: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, ErrNoCACerts
	}

	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
