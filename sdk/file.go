package sdk

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skdltmxn/uedump/internal/layout"
	"github.com/skdltmxn/uedump/internal/names"
	"github.com/skdltmxn/uedump/internal/objects"
	"github.com/skdltmxn/uedump/internal/uobject"
	"github.com/skdltmxn/uedump/memory"
	"github.com/skdltmxn/uedump/profile"
)

// File is an opened snapshot.
// It is safe for concurrent read access after opening.
type File struct {
	mem     *memory.Accessor
	closer  io.Closer
	roots   memory.Roots
	regions int
	off     *profile.Offsets
	log     *slog.Logger

	space   *uobject.Space
	objects *objects.Array

	closed bool
	mu     sync.RWMutex

	byName     map[string]memory.Address
	byNameOnce sync.Once

	registry     *uobject.Registry
	registryOnce sync.Once
	registryErr  error

	packages     []*Package
	packagesOnce sync.Once
}

// Info contains metadata about the snapshot.
type Info struct {
	Profile     string
	ModuleBase  memory.Address
	NamePool    memory.Address
	ObjectArray memory.Address
	Regions     int
	Objects     int
	Faults      uint64
}

// Option configures a File.
type Option func(*options)

type options struct {
	off        *profile.Offsets
	log        *slog.Logger
	moduleBase memory.Address
}

// WithProfile overrides the profile named in the snapshot.
func WithProfile(off *profile.Offsets) Option {
	return func(o *options) { o.off = off }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithModuleBase overrides the module base recorded in the snapshot.
func WithModuleBase(base memory.Address) Option {
	return func(o *options) { o.moduleBase = base }
}

// Open opens a snapshot file from the given path.
func Open(path string, opts ...Option) (*File, error) {
	img, err := memory.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sdk: failed to open snapshot: %w", err)
	}

	f, err := newFile(img, img.Roots(), len(img.Regions()), opts)
	if err != nil {
		img.Close()
		return nil, err
	}
	f.closer = img
	return f, nil
}

// New returns a File reading from r with the given entry points.
// This allows reading from arbitrary sources (live processes, fixtures, etc.)
func New(r memory.Reader, roots memory.Roots, opts ...Option) (*File, error) {
	return newFile(r, roots, 0, opts)
}

func newFile(r memory.Reader, roots memory.Roots, regions int, opts []Option) (*File, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.off == nil {
		name := roots.Profile
		if name == "" {
			name = profile.DefaultName
		}
		off, err := profile.Get(name)
		if err != nil {
			return nil, fmt.Errorf("sdk: %w", err)
		}
		o.off = off
	}
	if !o.moduleBase.IsNull() {
		roots.ModuleBase = o.moduleBase
	}
	roots.Profile = o.off.Name

	mem := memory.NewAccessor(r)
	pool := names.NewPool(mem, roots.NamePool, o.off)
	return &File{
		mem:     mem,
		roots:   roots,
		regions: regions,
		off:     o.off,
		log:     o.log,
		space:   uobject.NewSpace(mem, pool, o.off, o.log),
		objects: objects.New(mem, roots.ObjectArray, o.off),
	}, nil
}

// Close releases resources associated with the snapshot.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// Info returns metadata about the snapshot.
func (f *File) Info() *Info {
	return &Info{
		Profile:     f.off.Name,
		ModuleBase:  f.roots.ModuleBase,
		NamePool:    f.roots.NamePool,
		ObjectArray: f.roots.ObjectArray,
		Regions:     f.regions,
		Objects:     f.objects.Num(),
		Faults:      f.mem.Faults(),
	}
}

// Roots returns the entry points in use.
func (f *File) Roots() memory.Roots { return f.roots }

// Space returns the address space objects are read from.
func (f *File) Space() *uobject.Space { return f.space }

// Objects returns an iterator over every object in the object array.
func (f *File) Objects() iter.Seq[uobject.Object] {
	return func(yield func(uobject.Object) bool) {
		for _, addr := range f.objects.All() {
			if !yield(f.space.Object(addr)) {
				return
			}
		}
	}
}

// Object returns the handle for addr.
func (f *File) Object(addr memory.Address) uobject.Object {
	return f.space.Object(addr)
}

// FindObject returns the address of the first object with the given full
// name, or Null.
func (f *File) FindObject(fullName string) memory.Address {
	f.buildNameIndex()
	return f.byName[fullName]
}

// Lookup returns the object with the given full name.
func (f *File) Lookup(fullName string) (uobject.Object, error) {
	addr := f.FindObject(fullName)
	if addr.IsNull() {
		return f.space.Object(memory.Null), fmt.Errorf("%w: %s", ErrObjectNotFound, fullName)
	}
	return f.space.Object(addr), nil
}

func (f *File) buildNameIndex() {
	f.byNameOnce.Do(func() {
		f.byName = make(map[string]memory.Address)
		for o := range f.Objects() {
			name := o.FullName()
			if _, dup := f.byName[name]; !dup {
				f.byName[name] = o.Addr()
			}
		}
	})
}

// Registry returns the kind markers, resolved on first use.
func (f *File) Registry() (*uobject.Registry, error) {
	f.registryOnce.Do(func() {
		f.registry, f.registryErr = uobject.NewRegistry(f.space, f)
		if f.registryErr != nil {
			f.registryErr = fmt.Errorf("sdk: %w", f.registryErr)
		}
	})

	if f.registryErr != nil {
		return nil, f.registryErr
	}
	return f.registry, nil
}

// Packages returns every package owning at least one object, in object
// array order.
func (f *File) Packages() []*Package {
	f.packagesOnce.Do(func() {
		byAddr := make(map[memory.Address]*Package)
		for o := range f.Objects() {
			pkg := o.Package()
			if pkg.IsNull() {
				continue
			}
			p, ok := byAddr[pkg.Addr()]
			if !ok {
				p = &Package{Object: pkg, Name: pkg.Name()}
				byAddr[pkg.Addr()] = p
				f.packages = append(f.packages, p)
			}
			p.members = append(p.members, o.Addr())
		}
	})
	return f.packages
}

// Package returns the package with the given name.
func (f *File) Package(name string) (*Package, error) {
	for _, p := range f.Packages() {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
}

// Builder returns a declaration builder bound to the file's registry.
func (f *File) Builder() (*layout.Builder, error) {
	reg, err := f.Registry()
	if err != nil {
		return nil, err
	}
	return layout.NewBuilder(reg, f.log), nil
}

// Dump processes pkgs, or every package when pkgs is empty, on up to
// workers goroutines. Packages without output are omitted from the result.
func (f *File) Dump(ctx context.Context, workers int, pkgs ...*Package) ([]*Package, error) {
	f.mu.RLock()
	closed := f.closed
	f.mu.RUnlock()
	if closed {
		return nil, ErrFileClosed
	}

	b, err := f.Builder()
	if err != nil {
		return nil, err
	}
	reg, _ := f.Registry()

	if len(pkgs) == 0 {
		pkgs = f.Packages()
	}
	if workers <= 0 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range pkgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.Process(f.space, reg, b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Package, 0, len(pkgs))
	for _, p := range pkgs {
		if !p.Empty() {
			out = append(out, p)
		}
	}
	return out, nil
}
