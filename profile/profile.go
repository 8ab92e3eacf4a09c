// Package profile describes where the engine keeps each reflected field.
// Offsets differ between engine versions and build settings, so they are
// data loaded from YAML rather than constants.
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var rawProfiles []byte

// DefaultName is the profile used when none is requested.
const DefaultName = "ue4.25"

var (
	ErrUnknownProfile = errors.New("profile: unknown profile")
	ErrInvalidProfile = errors.New("profile: invalid profile")
)

// Offsets holds the byte offsets of every engine field the dumper reads.
type Offsets struct {
	Name string `yaml:"name"`

	// Stride is the alignment of name pool entries.
	Stride uint32 `yaml:"stride"`

	NamePool struct {
		Blocks          uint32 `yaml:"blocks"`
		BlockOffsetBits uint32 `yaml:"blockOffsetBits"`
	} `yaml:"namePool"`

	FNameEntry struct {
		InfoOffset    uint32 `yaml:"infoOffset"`
		WideBitOffset uint32 `yaml:"wideBitOffset"`
		LenBitOffset  uint32 `yaml:"lenBitOffset"`
		HeaderSize    uint32 `yaml:"headerSize"`
	} `yaml:"fnameEntry"`

	FName struct {
		ComparisonIndex uint32 `yaml:"comparisonIndex"`
		Number          uint32 `yaml:"number"`
	} `yaml:"fname"`

	ObjectArray struct {
		Objects          uint32 `yaml:"objects"`
		NumElements      uint32 `yaml:"numElements"`
		ElementsPerChunk uint32 `yaml:"elementsPerChunk"`
		ItemSize         uint32 `yaml:"itemSize"`
	} `yaml:"objectArray"`

	UObject struct {
		Index uint32 `yaml:"index"`
		Class uint32 `yaml:"class"`
		Name  uint32 `yaml:"name"`
		Outer uint32 `yaml:"outer"`
	} `yaml:"uobject"`

	UField struct {
		Next uint32 `yaml:"next"`
	} `yaml:"ufield"`

	UStruct struct {
		SuperStruct     uint32 `yaml:"superStruct"`
		Children        uint32 `yaml:"children"`
		ChildProperties uint32 `yaml:"childProperties"`
		PropertiesSize  uint32 `yaml:"propertiesSize"`
	} `yaml:"ustruct"`

	UEnum struct {
		Names uint32 `yaml:"names"`
	} `yaml:"uenum"`

	UFunction struct {
		Flags   uint32 `yaml:"flags"`
		FuncPtr uint32 `yaml:"funcPtr"`
	} `yaml:"ufunction"`

	FField struct {
		Class uint32 `yaml:"class"`
		Next  uint32 `yaml:"next"`
		Name  uint32 `yaml:"name"`
	} `yaml:"ffield"`

	FFieldClass struct {
		Name uint32 `yaml:"name"`
	} `yaml:"ffieldClass"`

	FProperty struct {
		ArrayDim      uint32 `yaml:"arrayDim"`
		ElementSize   uint32 `yaml:"elementSize"`
		PropertyFlags uint32 `yaml:"propertyFlags"`
		Offset        uint32 `yaml:"offset"`
	} `yaml:"fproperty"`

	FBoolProperty struct {
		FieldSize  uint32 `yaml:"fieldSize"`
		ByteOffset uint32 `yaml:"byteOffset"`
		ByteMask   uint32 `yaml:"byteMask"`
		FieldMask  uint32 `yaml:"fieldMask"`
	} `yaml:"fboolProperty"`

	FByteProperty struct {
		Enum uint32 `yaml:"enum"`
	} `yaml:"fbyteProperty"`

	FObjectPropertyBase struct {
		PropertyClass uint32 `yaml:"propertyClass"`
	} `yaml:"fobjectPropertyBase"`

	FClassProperty struct {
		MetaClass uint32 `yaml:"metaClass"`
	} `yaml:"fclassProperty"`

	FInterfaceProperty struct {
		InterfaceClass uint32 `yaml:"interfaceClass"`
	} `yaml:"finterfaceProperty"`

	FArrayProperty struct {
		Inner uint32 `yaml:"inner"`
	} `yaml:"farrayProperty"`

	FSetProperty struct {
		ElementProp uint32 `yaml:"elementProp"`
	} `yaml:"fsetProperty"`

	FMapProperty struct {
		KeyProp   uint32 `yaml:"keyProp"`
		ValueProp uint32 `yaml:"valueProp"`
	} `yaml:"fmapProperty"`

	FStructProperty struct {
		Struct uint32 `yaml:"struct"`
	} `yaml:"fstructProperty"`

	FEnumProperty struct {
		Enum uint32 `yaml:"enum"`
	} `yaml:"fenumProperty"`
}

// EnumNameStride returns the size of one (name, value) record in an enum's
// name array: an FName followed by an int64, aligned to 8 bytes.
func (o *Offsets) EnumNameStride() uint32 {
	return (o.FName.Number + 4 + 8 + 7) &^ 7
}

// Validate checks the profile for values that would make every read useless.
func (o *Offsets) Validate() error {
	switch {
	case o.Stride == 0 || o.Stride&(o.Stride-1) != 0:
		return fmt.Errorf("%w: stride %d is not a power of two", ErrInvalidProfile, o.Stride)
	case o.FNameEntry.HeaderSize == 0:
		return fmt.Errorf("%w: fnameEntry.headerSize is zero", ErrInvalidProfile)
	case o.NamePool.BlockOffsetBits == 0 || o.NamePool.BlockOffsetBits > 31:
		return fmt.Errorf("%w: namePool.blockOffsetBits %d out of range", ErrInvalidProfile, o.NamePool.BlockOffsetBits)
	case o.ObjectArray.ElementsPerChunk == 0 || o.ObjectArray.ItemSize == 0:
		return fmt.Errorf("%w: objectArray chunk geometry is zero", ErrInvalidProfile)
	}
	return nil
}

var profiles map[string]Offsets

func init() {
	var p struct {
		Profiles []yaml.Node `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(rawProfiles, &p); err != nil {
		panic(err)
	}

	profiles = make(map[string]Offsets)
	for _, node := range p.Profiles {
		o, err := decode(&node)
		if err != nil {
			panic(err)
		}
		profiles[o.Name] = *o
	}
}

// decode reads one profile node, starting from its base profile if it
// names one.
func decode(node *yaml.Node) (*Offsets, error) {
	var head struct {
		Name string `yaml:"name"`
		Base string `yaml:"base"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}

	var o Offsets
	if head.Base != "" {
		base, ok := profiles[head.Base]
		if !ok {
			return nil, fmt.Errorf("%w: base %q", ErrUnknownProfile, head.Base)
		}
		o = base
	}
	if err := node.Decode(&o); err != nil {
		return nil, err
	}
	if o.Name == "" {
		o.Name = head.Base
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", o.Name, err)
	}
	return &o, nil
}

// Get returns a copy of the named built-in profile.
func Get(name string) (*Offsets, error) {
	if name == "" {
		name = DefaultName
	}
	o, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return &o, nil
}

// Default returns a copy of the default profile.
func Default() *Offsets {
	o, err := Get(DefaultName)
	if err != nil {
		panic(err)
	}
	return o
}

// Names returns the names of the built-in profiles, sorted.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a profile document. Fields absent from the document keep the
// values of the built-in profile named by its "base" key.
func Load(r io.Reader) (*Offsets, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		return nil, fmt.Errorf("profile: failed to parse: %w", err)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return decode(node.Content[0])
	}
	return decode(&node)
}

// LoadFile reads a profile document from path.
func LoadFile(path string) (*Offsets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("profile: failed to open file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Encode writes o as YAML.
func Encode(w io.Writer, o *Offsets) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(o); err != nil {
		return err
	}
	return enc.Close()
}
