package driver

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cwbudde/algo-speaker/acoustic"
)

// NotFoundError is returned when a named driver is not in the repository.
// It lists the available names so callers can surface them directly.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("driver: %q not found (available: %s)",
		e.Name, strings.Join(e.Available, ", "))
}

// Repository provides named driver parameter sets. Implementations backed by
// files or databases live outside this module; only the in-memory contract
// matters here.
type Repository interface {
	Load(name string) (*Parameters, error)
	List() map[string]string
}

type entry struct {
	description string
	params      *Parameters
}

// MemoryRepository is a Repository backed by an in-process map. It is safe
// for concurrent readers once populated.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]entry)}
}

// Add validates spec and stores it under name, replacing any previous entry.
func (r *MemoryRepository) Add(name, description string, spec Spec, medium acoustic.Medium) error {
	params, err := New(spec, medium)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = entry{description: description, params: params}

	return nil
}

// Load returns the driver stored under name.
func (r *MemoryRepository) Load(name string) (*Parameters, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		names := make([]string, 0, len(r.entries))
		for n := range r.entries {
			names = append(names, n)
		}

		sort.Strings(names)

		return nil, &NotFoundError{Name: name, Available: names}
	}

	return e.params, nil
}

// List returns a name → description mapping of all stored drivers.
func (r *MemoryRepository) List() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.description
	}

	return out
}

// Catalog returns a repository seeded with a few representative drivers
// spanning small sealed-box woofers to large vented-box subwoofers.
func Catalog() *MemoryRepository {
	repo := NewMemoryRepository()
	air := acoustic.Air()

	for _, d := range []struct {
		name, description string
		spec              Spec
	}{
		{
			"classic-5in", "5¼\" midwoofer, high Qts, small sealed boxes",
			Spec{
				Mmd: 7.0e-3, Cms: 6.5e-4, Rms: 0.95,
				Re: 2.6, Le: 0.35e-3, BL: 4.2, Sd: 86e-4, Xmax: 3.0e-3,
			},
		},
		{
			"studio-8in", "8\" woofer, balanced Qts for sealed or vented use",
			Spec{
				Mmd: 22.0e-3, Cms: 1.1e-3, Rms: 1.6,
				Re: 5.6, Le: 0.6e-3, BL: 7.5, Sd: 210e-4, Xmax: 4.5e-3,
			},
		},
		{
			"pro-12in", "12\" pro-audio woofer, low Qts, horn or vented loading",
			Spec{
				Mmd: 55.0e-3, Cms: 3.2e-4, Rms: 3.5,
				Re: 4.9, Le: 1.0e-3, BL: 17.0, Sd: 530e-4, Xmax: 5.5e-3,
			},
		},
		{
			"sub-15in", "15\" subwoofer, large Vas, vented alignments",
			Spec{
				Mmd: 120.0e-3, Cms: 4.2e-4, Rms: 4.2,
				Re: 4.9, Le: 1.6e-3, BL: 18.5, Sd: 855e-4, Xmax: 8.0e-3,
			},
		},
	} {
		if err := repo.Add(d.name, d.description, d.spec, air); err != nil {
			panic(err) // catalog entries are fixed and must validate
		}
	}

	return repo
}
