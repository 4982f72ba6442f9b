package tlsroots

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

// KeyPair serves a certificate and key from disk and swaps them in when
// either file is rewritten. A failed reload keeps the previous pair.
type KeyPair struct {
	certFile string
	keyFile  string
	log      logger.Logger

	mu   sync.RWMutex
	cert *tls.Certificate

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// KeyPairOption configures a KeyPair.
type KeyPairOption func(*KeyPair)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) KeyPairOption {
	return func(k *KeyPair) {
		k.log = l
	}
}

// LoadKeyPair reads certFile and keyFile. Call Watch to follow later edits.
func LoadKeyPair(certFile, keyFile string, opts ...KeyPairOption) (*KeyPair, error) {
	k := &KeyPair{
		certFile: certFile,
		keyFile:  keyFile,
		log:      logger.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}

	if err := k.Reload(); err != nil {
		return nil, err
	}
	return k, nil
}

// Reload re-reads both files.
func (k *KeyPair) Reload() error {
	cert, err := tls.LoadX509KeyPair(k.certFile, k.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}

	k.mu.Lock()
	k.cert = &cert
	k.mu.Unlock()
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (k *KeyPair) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.cert, nil
}

// ServerConfig returns a server TLS config backed by the live pair.
func (k *KeyPair) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: k.GetCertificate,
		MinVersion:     minVersion,
	}
}

// Watch follows the directories holding both files and reloads on writes,
// creates and renames of either file. It returns once the watch is in place.
func (k *KeyPair) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}

	dirs := map[string]bool{
		filepath.Dir(k.certFile): true,
		filepath.Dir(k.keyFile):  true,
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
	}
	k.watcher = w

	go k.loop()
	k.log.Info("certificate watcher started", "cert_file", k.certFile, "key_file", k.keyFile)
	return nil
}

func (k *KeyPair) loop() {
	certBase := filepath.Base(k.certFile)
	keyBase := filepath.Base(k.keyFile)

	for {
		select {
		case event, ok := <-k.watcher.Events:
			if !ok {
				return
			}
			base := filepath.Base(event.Name)
			if base != certBase && base != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if err := k.Reload(); err != nil {
				// The other half of the pair may not be written yet.
				k.log.Warn("certificate reload failed", "file", event.Name, "error", err)
				continue
			}
			k.log.Info("certificate reloaded", "cert_file", k.certFile)

		case err, ok := <-k.watcher.Errors:
			if !ok {
				return
			}
			k.log.Error("certificate watcher error", "error", err)

		case <-k.done:
			return
		}
	}
}

// Stop ends the watch. It is safe to call more than once, or without Watch.
func (k *KeyPair) Stop() error {
	var err error
	k.stopOnce.Do(func() {
		close(k.done)
		if k.watcher != nil {
			err = k.watcher.Close()
		}
	})
	return err
}
