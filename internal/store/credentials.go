package store

import (
	"errors"
	"path/filepath"
	"sort"

	"github.com/majorcontext/sftpman/internal/log"
)

// CredentialsFile is the credential document's file name.
const CredentialsFile = "sftp-servers.json"

// Credentials are the per-server secrets the runtime cannot give back.
type Credentials struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	HostPath      string `json:"host_path"`
	ContainerPath string `json:"container_path"`
}

// CredentialStore owns the credential document, a map from server name to
// Credentials. With a SecretBackend, passwords live in the backend and the
// document keeps an empty password field.
type CredentialStore struct {
	file    jsonFile
	secrets SecretBackend
}

// NewCredentialStore returns a store for dir/sftp-servers.json. secrets may
// be nil to keep passwords inline.
func NewCredentialStore(dir string, secrets SecretBackend) *CredentialStore {
	return &CredentialStore{
		file:    jsonFile{path: filepath.Join(dir, CredentialsFile)},
		secrets: secrets,
	}
}

// Path returns the document location.
func (s *CredentialStore) Path() string {
	return s.file.path
}

// All returns every stored entry with passwords filled in.
func (s *CredentialStore) All() map[string]Credentials {
	doc := map[string]Credentials{}
	s.file.read(&doc)
	for name, c := range doc {
		doc[name] = s.withSecret(name, c)
	}
	return doc
}

// Get returns the entry for name.
func (s *CredentialStore) Get(name string) (Credentials, bool) {
	doc := map[string]Credentials{}
	s.file.read(&doc)
	c, ok := doc[name]
	if !ok {
		return Credentials{}, false
	}
	return s.withSecret(name, c), true
}

func (s *CredentialStore) withSecret(name string, c Credentials) Credentials {
	if s.secrets == nil || c.Password != "" {
		return c
	}
	secret, err := s.secrets.Get(name)
	if err != nil {
		if !errors.Is(err, ErrSecretNotFound) {
			log.Warn("reading server password", "server", name, "backend", s.secrets.Name(), "error", err)
		}
		return c
	}
	c.Password = secret
	return c
}

// Put inserts or replaces the entry for name. When the document cannot be
// written, the backend secret is put back the way it was.
func (s *CredentialStore) Put(name string, c Credentials) error {
	restore := func() {}
	if s.secrets != nil {
		prev, prevErr := s.secrets.Get(name)
		if err := s.secrets.Set(name, c.Password); err != nil {
			return errors.Join(ErrPersistence, err)
		}
		restore = func() {
			if prevErr == nil {
				if err := s.secrets.Set(name, prev); err != nil {
					log.Warn("restoring server password", "server", name, "backend", s.secrets.Name(), "error", err)
				}
				return
			}
			s.deleteSecret(name)
		}
		c.Password = ""
	}

	doc := map[string]Credentials{}
	err := s.file.update(&doc, func() error {
		doc[name] = c
		return nil
	})
	if err != nil {
		restore()
	}
	return err
}

// Delete removes the entry for name. Deleting a missing entry succeeds.
func (s *CredentialStore) Delete(name string) error {
	doc := map[string]Credentials{}
	err := s.file.update(&doc, func() error {
		if _, ok := doc[name]; !ok {
			return errUnchanged
		}
		delete(doc, name)
		return nil
	})
	if err != nil {
		return err
	}
	s.deleteSecret(name)
	return nil
}

// Prune removes every entry for which keep returns false and reports the
// removed names in sorted order.
func (s *CredentialStore) Prune(keep func(name string) bool) ([]string, error) {
	var removed []string
	doc := map[string]Credentials{}
	err := s.file.update(&doc, func() error {
		for name := range doc {
			if !keep(name) {
				removed = append(removed, name)
				delete(doc, name)
			}
		}
		if len(removed) == 0 {
			return errUnchanged
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(removed)
	for _, name := range removed {
		s.deleteSecret(name)
	}
	return removed, nil
}

func (s *CredentialStore) deleteSecret(name string) {
	if s.secrets == nil {
		return
	}
	if err := s.secrets.Delete(name); err != nil {
		log.Warn("deleting server password", "server", name, "backend", s.secrets.Name(), "error", err)
	}
}
