package repo

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrEmailExists   = errors.New("email already exists")
	ErrEmailNotFound = errors.New("email not found")
)

// EmailListRepo persists the allow-list of mailbox addresses the dashboard
// may browse. Backed by a flat JSON file; every mutation rewrites the whole
// file under the lock.
type EmailListRepo struct {
	path string
	mu   sync.Mutex
}

func NewEmailListRepo(path string) *EmailListRepo {
	return &EmailListRepo{path: path}
}

// Bootstrap writes an empty list when the store file does not exist yet, so
// operators find an editable file on first run.
func (r *EmailListRepo) Bootstrap() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	return r.save([]string{})
}

func (r *EmailListRepo) GetAll() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Add appends a normalized address. Addresses are compared
// case-insensitively.
func (r *EmailListRepo) Add(email string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = normalizeEmail(email)

	emails, err := r.load()
	if err != nil {
		return nil, err
	}

	for _, e := range emails {
		if e == email {
			return nil, ErrEmailExists
		}
	}

	emails = append(emails, email)
	sort.Strings(emails)

	if err := r.save(emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *EmailListRepo) Remove(email string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = normalizeEmail(email)

	emails, err := r.load()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(emails))
	found := false
	for _, e := range emails {
		if e == email {
			found = true
			continue
		}
		out = append(out, e)
	}
	if !found {
		return nil, ErrEmailNotFound
	}

	if err := r.save(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Contains reports whether an address is on the allow-list. An empty list
// allows nothing.
func (r *EmailListRepo) Contains(email string) (bool, error) {
	emails, err := r.GetAll()
	if err != nil {
		return false, err
	}

	email = normalizeEmail(email)
	for _, e := range emails {
		if e == email {
			return true, nil
		}
	}
	return false, nil
}

// load tolerates a missing or corrupt store, treating both as empty. Corrupt
// content is logged and overwritten on the next successful mutation.
func (r *EmailListRepo) load() ([]string, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var emails []string
	if err := json.Unmarshal(b, &emails); err != nil {
		log.Warn().Msgf("email store is corrupt, treating as empty, path: %s", r.path)
		return []string{}, nil
	}

	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *EmailListRepo) save(emails []string) error {
	b, err := json.MarshalIndent(emails, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(r.path, b, 0o644)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
