package fsmio

import (
	"io"
	"slices"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/sirupsen/logrus"
)

// Registry holds defined networks by name. It is safe for concurrent use.
type Registry struct {
	nets *xsync.Map[string, *Network]
}

func NewRegistry() *Registry {
	return &Registry{nets: xsync.NewMap[string, *Network]()}
}

// Add stores n under name, replacing any network already defined there.
func (r *Registry) Add(name string, n *Network) {
	r.nets.Store(name, n)
}

func (r *Registry) Get(name string) (*Network, bool) {
	return r.nets.Load(name)
}

// Delete removes name and reports whether it was defined.
func (r *Registry) Delete(name string) bool {
	_, ok := r.nets.LoadAndDelete(name)
	return ok
}

func (r *Registry) Len() int { return r.nets.Size() }

// Names returns the defined names in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.nets.Size())
	r.nets.Range(func(name string, _ *Network) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Range calls f for every definition until f returns false. The order is unspecified.
func (r *Registry) Range(f func(name string, n *Network) bool) {
	r.nets.Range(f)
}

// SaveAll writes every network of reg to one gzip stream at path, in name
// order. Each network is written under its registry name; the stored
// networks are not modified.
// An empty registry logs a warning and writes nothing.
func SaveAll(path string, reg *Registry, opts *Options) error {
	o := resolveOptions(opts)
	log := o.Logger.WithField("file", path)
	if reg == nil || reg.Len() == 0 {
		log.Warn(ErrEmptyRegistry.Error())
		return nil
	}

	out, err := createOutput(path, true, o.CompressionLevel)
	if err != nil {
		return err
	}
	names := reg.Names()
	log.WithField("networks", len(names)).Info("writing definitions")
	for _, name := range names {
		n, ok := reg.Get(name)
		if !ok {
			continue
		}
		// n may be read concurrently; rename a copy
		named := *n
		named.Name = name
		if err := Encode(out, &named); err != nil {
			_ = out.Close()
			return errors.Wrapf(err, "save definition %s to %s", name, path)
		}
	}
	return out.Close()
}

// LoadAll reads every network in the file at path into a new Registry,
// keyed by network name. Nothing is returned if any network fails to decode.
func LoadAll(path string, opts *Options) (*Registry, error) {
	o := resolveOptions(opts)
	r, err := Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load definitions %s", path)
	}
	defer r.Release()

	reg := NewRegistry()
	for {
		n, err := Decode(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "load definitions %s", path)
		}
		reg.Add(n.Name, n)
	}
	o.Logger.WithFields(logrus.Fields{"file": path, "networks": reg.Len()}).Info("read definitions")
	return reg, nil
}
