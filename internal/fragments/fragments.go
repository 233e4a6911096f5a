package fragments

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/osp-containers/materializer/internal/errors"
)

// Fragment is a single secret-bearing file mounted into the container.
type Fragment struct {
	Name string
	Data []byte
}

// Resolver resolves an external secret reference to its value.
type Resolver interface {
	Resolve(ctx context.Context, reference string) (string, error)
}

// Source is a directory of mounted secret fragments.
type Source struct {
	// Dir is the directory the orchestrator mounts secrets into.
	Dir string
	// Ext restricts enumeration to files with this extension (e.g. ".conf").
	// Empty matches every regular file.
	Ext string
}

// List returns the fragments in lexicographic filename order. A missing
// source directory yields ok=false with no fragments; any other filesystem
// failure is an error. Fragment bodies consisting of a single op:// reference
// are resolved through r before being returned.
func (s Source) List(ctx context.Context, r Resolver) (frags []Fragment, ok bool, err error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.FragmentError("Enumerating secret fragments", s.Dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if s.Ext != "" && filepath.Ext(entry.Name()) != s.Ext {
			continue
		}

		path := filepath.Join(s.Dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, errors.FragmentError("Reading secret fragment", path, err)
		}

		data, err = resolve(ctx, r, entry.Name(), data)
		if err != nil {
			return nil, false, err
		}

		frags = append(frags, Fragment{Name: entry.Name(), Data: data})
	}

	return frags, true, nil
}

// Lookup returns the fragment with the given filename.
func Lookup(frags []Fragment, name string) (Fragment, bool) {
	for _, f := range frags {
		if f.Name == name {
			return f, true
		}
	}
	return Fragment{}, false
}

// resolve substitutes the fragment body when it is a 1Password secret
// reference. A reference with no resolver configured is fatal: launching the
// service with the literal reference in place of a credential would be a
// half-written config.
func resolve(ctx context.Context, r Resolver, name string, data []byte) ([]byte, error) {
	ref := strings.TrimSpace(string(data))
	if !strings.HasPrefix(ref, "op://") || strings.ContainsAny(ref, " \t\n") {
		return data, nil
	}

	if r == nil {
		return nil, errors.ResolveError(name, ref, nil)
	}

	value, err := r.Resolve(ctx, ref)
	if err != nil {
		return nil, errors.ResolveError(name, ref, err)
	}

	return []byte(value), nil
}
