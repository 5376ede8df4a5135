// Package symbols holds the symbol forest: deduplicated C/C++ entities
// addressed by stable handles, and the TypeIdentifier values that describe
// how those entities use each other.
package symbols

import "slices"

// Handle addresses a Symbol in its Forest. The zero Handle is the null handle.
type Handle uint32

// NoSymbol is the null handle
const NoSymbol Handle = 0

// Kind is the closed set of symbol shapes
type Kind uint8

const (
	KindNamespace Kind = iota
	KindFunction
	KindEnum
	KindAggregate
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindFunction:
		return "function"
	case KindEnum:
		return "enum"
	case KindAggregate:
		return "aggregate"
	}
	return "unknown"
}

// AggregateKind distinguishes the three record keywords
type AggregateKind uint8

const (
	AggregateClass AggregateKind = iota
	AggregateStruct
	AggregateUnion
)

func (k AggregateKind) String() string {
	switch k {
	case AggregateClass:
		return "class"
	case AggregateStruct:
		return "struct"
	case AggregateUnion:
		return "union"
	}
	return "unknown"
}

// Progress is the expansion state of a symbol.
//
//	NotVisited -> Expanding -> Expanded
//	                        -> Incomplete (may be retried)
type Progress uint8

const (
	NotVisited Progress = iota
	Expanding
	Expanded
	Incomplete
)

func (p Progress) String() string {
	switch p {
	case NotVisited:
		return "not_visited"
	case Expanding:
		return "expanding"
	case Expanded:
		return "expanded"
	case Incomplete:
		return "incomplete"
	}
	return "unknown"
}

// Symbol is one node of the forest. Parent is a weak link used for naming
// and ownership attribution only.
type Symbol struct {
	Handle      Handle
	USR         string
	Name        string
	DisplayName string
	Parent      Handle
	Progress    Progress
	Payload     Payload
}

// Kind returns the kind implied by the payload
func (s *Symbol) Kind() Kind {
	return s.Payload.Kind()
}

// KindName is Kind().String() except that aggregates report their keyword
func (s *Symbol) KindName() string {
	if c, ok := s.Payload.(*Class); ok {
		return c.Aggregate.String()
	}
	return s.Kind().String()
}

// Complete reports whether expansion finished successfully
func (s *Symbol) Complete() bool {
	return s.Progress == Expanded
}

// NumReferences returns the number of outgoing symbol references
func (s *Symbol) NumReferences() int {
	return s.Payload.NumReferences()
}

// ReferenceAt returns the i-th outgoing reference, or NoSymbol when out of range
func (s *Symbol) ReferenceAt(i int) Handle {
	return s.Payload.ReferenceAt(i)
}

// References collects every outgoing reference in order
func (s *Symbol) References() []Handle {
	n := s.NumReferences()
	refs := make([]Handle, 0, n)
	for i := 0; i < n; i++ {
		refs = append(refs, s.ReferenceAt(i))
	}
	return refs
}

func (s *Symbol) AsNamespace() *Namespace {
	ns, _ := s.Payload.(*Namespace)
	return ns
}

func (s *Symbol) AsClass() *Class {
	c, _ := s.Payload.(*Class)
	return c
}

func (s *Symbol) AsFunction() *Function {
	fn, _ := s.Payload.(*Function)
	return fn
}

func (s *Symbol) AsEnum() *Enum {
	e, _ := s.Payload.(*Enum)
	return e
}

// Payload is the kind-specific part of a Symbol. The implementations are
// *Namespace, *Class, *Function and *Enum.
type Payload interface {
	Kind() Kind
	NumReferences() int
	ReferenceAt(i int) Handle
	sealedPayload()
}

// Namespace keeps its children in discovery order
type Namespace struct {
	Children []Handle

	members map[Handle]struct{}
	sites   map[string]struct{}
}

func (*Namespace) Kind() Kind     { return KindNamespace }
func (*Namespace) sealedPayload() {}

// AddChild appends h unless it is already a child
func (n *Namespace) AddChild(h Handle) bool {
	if h == NoSymbol {
		return false
	}
	if n.members == nil {
		n.members = make(map[Handle]struct{})
	}
	if _, ok := n.members[h]; ok {
		return false
	}
	n.members[h] = struct{}{}
	n.Children = append(n.Children, h)
	return true
}

// MarkSite records a declaration site of this namespace. It returns false
// when the site was already walked.
func (n *Namespace) MarkSite(key string) bool {
	if n.sites == nil {
		n.sites = make(map[string]struct{})
	}
	if _, ok := n.sites[key]; ok {
		return false
	}
	n.sites[key] = struct{}{}
	return true
}

func (n *Namespace) NumReferences() int { return len(n.Children) }

func (n *Namespace) ReferenceAt(i int) Handle {
	if i < 0 || i >= len(n.Children) {
		return NoSymbol
	}
	return n.Children[i]
}

// Class is the payload of class, struct and union symbols.
// References are ordered: bases, fields, type refs, inner classes,
// member functions, inner enums.
type Class struct {
	Aggregate AggregateKind

	ParentClasses []TypeIdentifier
	FieldTypes    []TypeIdentifier
	TypeRefs      []TypeIdentifier

	InnerClasses    []Handle
	MemberFunctions []Handle
	InnerEnums      []Handle
}

func (*Class) Kind() Kind     { return KindAggregate }
func (*Class) sealedPayload() {}

func (c *Class) AddInnerClass(h Handle) bool     { return addUnique(&c.InnerClasses, h) }
func (c *Class) AddMemberFunction(h Handle) bool { return addUnique(&c.MemberFunctions, h) }
func (c *Class) AddInnerEnum(h Handle) bool      { return addUnique(&c.InnerEnums, h) }

// Reset drops everything gathered by a previous expansion attempt
func (c *Class) Reset() {
	c.ParentClasses = nil
	c.FieldTypes = nil
	c.TypeRefs = nil
	c.InnerClasses = nil
	c.MemberFunctions = nil
	c.InnerEnums = nil
}

func (c *Class) NumReferences() int {
	return countSymbols(c.ParentClasses) + countSymbols(c.FieldTypes) + countSymbols(c.TypeRefs) +
		len(c.InnerClasses) + len(c.MemberFunctions) + len(c.InnerEnums)
}

func (c *Class) ReferenceAt(i int) Handle {
	if i < 0 {
		return NoSymbol
	}
	for _, group := range [...][]TypeIdentifier{c.ParentClasses, c.FieldTypes, c.TypeRefs} {
		if h, ok := symbolIn(group, &i); ok {
			return h
		}
	}
	for _, group := range [...][]Handle{c.InnerClasses, c.MemberFunctions, c.InnerEnums} {
		if i < len(group) {
			return group[i]
		}
		i -= len(group)
	}
	return NoSymbol
}

// Function is the payload of free functions and methods. ReturnType stays
// nil until expansion resolves it. References are parameters then result.
type Function struct {
	ReturnType     TypeIdentifier
	ParameterTypes []TypeIdentifier
	IsMethod       bool
	Variadic       bool
}

func (*Function) Kind() Kind     { return KindFunction }
func (*Function) sealedPayload() {}

// Reset drops everything gathered by a previous expansion attempt
func (f *Function) Reset() {
	f.ReturnType = nil
	f.ParameterTypes = nil
	f.Variadic = false
}

func (f *Function) NumReferences() int {
	n := countSymbols(f.ParameterTypes)
	if f.ReturnType != nil {
		n += f.ReturnType.NumSymbols()
	}
	return n
}

func (f *Function) ReferenceAt(i int) Handle {
	if i < 0 {
		return NoSymbol
	}
	if h, ok := symbolIn(f.ParameterTypes, &i); ok {
		return h
	}
	if f.ReturnType != nil {
		return f.ReturnType.SymbolAt(i)
	}
	return NoSymbol
}

// Enum has no outgoing references; enumerators are not modeled.
type Enum struct{}

func (*Enum) Kind() Kind             { return KindEnum }
func (*Enum) sealedPayload()         {}
func (*Enum) NumReferences() int     { return 0 }
func (*Enum) ReferenceAt(int) Handle { return NoSymbol }

func addUnique(list *[]Handle, h Handle) bool {
	if h == NoSymbol || slices.Contains(*list, h) {
		return false
	}
	*list = append(*list, h)
	return true
}
