package symbols

import (
	"iter"

	"github.com/standardbeagle/codenodes/internal/alloc"
)

// RootDisplayName is the display name of the global namespace
const RootDisplayName = "::"

// Separator joins a parent's display name and a local spelling
const Separator = "::"

// Forest owns every symbol of a run. Symbols live in an arena and are never
// freed individually; handles stay valid for the forest's lifetime.
//
// Forest does no locking. Writers serialize through symbolgraph.Builder and
// readers run after all writers are done.
type Forest struct {
	arena *alloc.Arena[Symbol]
	byUSR map[string]Handle
	root  Handle
}

// NewForest creates a forest holding only the global namespace
func NewForest() *Forest {
	f := &Forest{
		arena: alloc.NewArena[Symbol](),
		byUSR: make(map[string]Handle),
	}
	root := f.alloc()
	root.DisplayName = RootDisplayName
	root.Payload = &Namespace{}
	root.Progress = Expanded
	f.root = root.Handle
	return f
}

func (f *Forest) alloc() *Symbol {
	idx, sym := f.arena.Alloc()
	sym.Handle = Handle(idx)
	return sym
}

// RootHandle returns the handle of the global namespace
func (f *Forest) RootHandle() Handle {
	return f.root
}

// Root returns the global namespace symbol
func (f *Forest) Root() *Symbol {
	return f.Get(f.root)
}

// Get returns the symbol for h, or nil for NoSymbol and unknown handles
func (f *Forest) Get(h Handle) *Symbol {
	return f.arena.At(uint32(h))
}

// Lookup finds a symbol by unique id
func (f *Forest) Lookup(usr string) (Handle, bool) {
	h, ok := f.byUSR[usr]
	return h, ok
}

// Insert registers a new symbol under usr. The caller must have checked
// that usr is not yet present. A symbol whose parent is a namespace, or that
// has no parent, is appended to that namespace's children right away so it
// is reachable from the root even if no walk of the namespace reaches it.
func (f *Forest) Insert(usr, name string, parent Handle, payload Payload) *Symbol {
	sym := f.alloc()
	sym.USR = usr
	sym.Name = name
	sym.Parent = parent
	sym.DisplayName = f.QualifiedName(parent, name)
	sym.Payload = payload
	f.byUSR[usr] = sym.Handle

	owner := f.Root()
	if parent != NoSymbol {
		owner = f.Get(parent)
	}
	if ns := owner.AsNamespace(); ns != nil {
		ns.AddChild(sym.Handle)
	}
	return sym
}

// QualifiedName joins the parent's display name and name
func (f *Forest) QualifiedName(parent Handle, name string) string {
	p := f.Get(parent)
	if p == nil || p.Handle == f.root || p.DisplayName == "" {
		return name
	}
	return p.DisplayName + Separator + name
}

// Len returns the number of symbols including the global namespace
func (f *Forest) Len() int {
	return f.arena.Len()
}

// All yields every symbol in creation order, global namespace first
func (f *Forest) All() iter.Seq[*Symbol] {
	return func(yield func(*Symbol) bool) {
		for i := 1; i <= f.arena.Len(); i++ {
			if !yield(f.arena.At(uint32(i))) {
				return
			}
		}
	}
}

// Name returns the display name of h, for use with Describe
func (f *Forest) Name(h Handle) string {
	if s := f.Get(h); s != nil {
		return s.DisplayName
	}
	return "<null>"
}
