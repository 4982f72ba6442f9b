package tlsroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

// writePair writes a self-signed certificate for commonName and its key.
func writePair(t *testing.T, certFile, keyFile, commonName string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o644))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
}

func commonName(t *testing.T, k *KeyPair) string {
	t.Helper()
	cert, err := k.GetCertificate(nil)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return leaf.Subject.CommonName
}

func TestLoadPool(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "ca.crt")
	writePair(t, certFile, filepath.Join(dir, "ca.key"), "test-ca")

	pool, err := LoadPool(certFile)
	require.NoError(t, err)
	assert.NotNil(t, pool)

	pool, err = LoadPool("")
	require.NoError(t, err)
	assert.NotNil(t, pool)

	_, err = LoadPool(filepath.Join(dir, "missing.crt"))
	assert.Error(t, err)
}

func TestAppendPEM(t *testing.T) {
	pool := x509.NewCertPool()
	assert.ErrorIs(t, AppendPEM(pool, []byte("not pem")), ErrNoCertsFound)

	keyOnly := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1, 2, 3}})
	assert.ErrorIs(t, AppendPEM(pool, keyOnly), ErrNoCertsFound)

	broken := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}})
	assert.Error(t, AppendPEM(pool, broken))
}

func TestClientConfig(t *testing.T) {
	cfg, err := ClientConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg.RootCAs)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

func TestLoadKeyPair(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writePair(t, certFile, keyFile, "first")

	k, err := LoadKeyPair(certFile, keyFile, WithLogger(logger.Nop()))
	require.NoError(t, err)
	assert.Equal(t, "first", commonName(t, k))

	cfg := k.ServerConfig()
	require.NotNil(t, cfg.GetCertificate)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)

	assert.NoError(t, k.Stop())
	assert.NoError(t, k.Stop())
}

func TestLoadKeyPair_Invalid(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, []byte("invalid"), 0o644))
	require.NoError(t, os.WriteFile(keyFile, []byte("invalid"), 0o600))

	_, err := LoadKeyPair(certFile, keyFile)
	assert.Error(t, err)

	_, err = LoadKeyPair(filepath.Join(dir, "nope.crt"), filepath.Join(dir, "nope.key"))
	assert.Error(t, err)
}

func TestKeyPair_ReloadKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writePair(t, certFile, keyFile, "first")

	k, err := LoadKeyPair(certFile, keyFile, WithLogger(logger.Nop()))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(keyFile, []byte("garbage"), 0o600))
	assert.Error(t, k.Reload())
	assert.Equal(t, "first", commonName(t, k))
}

func TestKeyPair_Watch(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	writePair(t, certFile, keyFile, "first")

	k, err := LoadKeyPair(certFile, keyFile, WithLogger(logger.Nop()))
	require.NoError(t, err)
	require.NoError(t, k.Watch())
	t.Cleanup(func() { _ = k.Stop() })

	writePair(t, certFile, keyFile, "second")

	assert.Eventually(t, func() bool {
		return commonName(t, k) == "second"
	}, 3*time.Second, 20*time.Millisecond)
}
