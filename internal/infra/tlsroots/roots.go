package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned when PEM data holds no certificate.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// Pool is a set of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
	added    int
}

// NewPool creates a pool seeded with the system roots, or an empty pool
// when the platform exposes none.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertFile adds every certificate in a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read %s: %w", path, err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("tlsroots: %s: %w", path, err)
	}
	return nil
}

// AddCertPEM adds every CERTIFICATE block in pemData. Other block types
// are skipped.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var n int
	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("parse certificate: %w", err)
		}
		p.certPool.AddCert(cert)
		n++
	}

	if n == 0 {
		return ErrNoCertsFound
	}
	p.added += n
	return nil
}

// Added reports how many certificates were added on top of the seed roots.
func (p *Pool) Added() int {
	return p.added
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// ClientConfig returns a client TLS config trusting this pool.
func (p *Pool) ClientConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}

// ClientConfigFromFile returns a client TLS config trusting the system
// roots and the certificates in caFile.
func ClientConfigFromFile(caFile string) (*tls.Config, error) {
	p := NewPool()
	if err := p.AddCertFile(caFile); err != nil {
		return nil, err
	}
	return p.ClientConfig(), nil
}
