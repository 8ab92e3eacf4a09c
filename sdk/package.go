package sdk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skdltmxn/uedump/internal/layout"
	"github.com/skdltmxn/uedump/internal/uobject"
	"github.com/skdltmxn/uedump/memory"
)

// Package groups the objects sharing an outermost outer.
type Package struct {
	Object uobject.Object
	Name   string

	members []memory.Address

	// Populated by Process.
	Classes []*layout.Struct
	Structs []*layout.Struct
	Enums   []*layout.Enum
	Dropped int
}

// Len returns the number of objects in the package.
func (p *Package) Len() int {
	return len(p.members)
}

// Members returns the addresses of the package's objects in object array
// order.
func (p *Package) Members() []memory.Address {
	return p.members
}

// Empty reports whether processing produced no declarations.
func (p *Package) Empty() bool {
	return len(p.Classes) == 0 && len(p.Structs) == 0 && len(p.Enums) == 0
}

// Process reconstructs every class, script struct and enum of the package.
// Objects that cannot be reconstructed are logged and counted in Dropped.
// Calling Process again replaces the previous results.
func (p *Package) Process(s *uobject.Space, reg *uobject.Registry, b *layout.Builder) {
	var (
		classes, structs []*layout.Struct
		enums            []*layout.Enum
		dropped          int
	)

	for _, addr := range p.members {
		o := s.Object(addr)
		switch reg.Classify(o) {
		case uobject.KindClass:
			cls, _ := reg.AsClass(o)
			st, err := b.Struct(cls.Struct)
			if err != nil {
				dropped += p.drop(s, o, err)
				continue
			}
			classes = append(classes, st)

		case uobject.KindScriptStruct:
			ss, _ := reg.AsScriptStruct(o)
			st, err := b.Struct(ss)
			if err != nil {
				dropped += p.drop(s, o, err)
				continue
			}
			structs = append(structs, st)

		case uobject.KindEnum:
			en, _ := reg.AsEnum(o)
			e, err := b.Enum(en)
			if err != nil {
				dropped += p.drop(s, o, err)
				continue
			}
			enums = append(enums, e)
		}
	}

	p.Classes = orderStructs(s.Log, classes)
	p.Structs = orderStructs(s.Log, structs)
	p.Enums = enums
	p.Dropped = dropped
}

// drop logs why o produced no output and returns 1 when that counts as a
// dropped object.
func (p *Package) drop(s *uobject.Space, o uobject.Object, err error) int {
	if errors.Is(err, layout.ErrEmpty) {
		return 0
	}
	s.Log.Debug("dropping object", "package", p.Name, "object", o.FullName(), "err", err)
	return 1
}

// Files returns the names of the files Save writes.
func (p *Package) Files() []string {
	var files []string
	base := fileName(p.Name)
	if len(p.Classes) > 0 {
		files = append(files, base+"_classes.h")
	}
	if len(p.Structs) > 0 || len(p.Enums) > 0 {
		files = append(files, base+"_struct.h")
	}
	return files
}

// Save writes the package's declarations into dir. Classes go to
// <name>_classes.h; enums followed by structs go to <name>_struct.h. A
// package without declarations writes nothing.
func (p *Package) Save(dir string, moduleBase memory.Address) error {
	if p.Empty() {
		return nil
	}
	base := filepath.Join(dir, fileName(p.Name))

	if len(p.Classes) > 0 {
		if err := writeFile(base+"_classes.h", func(f *os.File) error {
			return WriteStructs(f, p.Classes, moduleBase)
		}); err != nil {
			return err
		}
	}

	if len(p.Structs) > 0 || len(p.Enums) > 0 {
		if err := writeFile(base+"_struct.h", func(f *os.File) error {
			if err := WriteEnums(f, p.Enums); err != nil {
				return err
			}
			return WriteStructs(f, p.Structs, moduleBase)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sdk: failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("sdk: failed to write %s: %w", path, err)
	}
	return f.Close()
}

// fileName maps a package name to a file name without directory parts.
func fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "_" + name
	}
	return name
}
