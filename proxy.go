package fabrik

// SequenceLookup is the read-only view of the global sequence registry the
// proxy consults when disambiguating unqualified declarations.
type SequenceLookup interface {
	Sequence(name string) (*Sequence, bool)
}

// Proxy is the restricted declaration surface handed to a factory body. One
// proxy exists per body; it holds only a reference to the definition it
// populates and is discarded once the body returns.
//
// Every operation records a declaration into the owning definition in call
// order. Nothing is evaluated here: generators, sequences and associations
// are described, and the build engine resolves them later. The surface is a
// concrete struct with exactly these methods, so a factory body cannot reach
// anything that would shadow the declaration grammar.
type Proxy struct {
	factory   string
	def       *Definition
	sequences SequenceLookup
}

// NewProxy returns a proxy populating def on behalf of the named factory.
// sequences may be nil, in which case unqualified declarations always fall
// through to the association shorthand.
func NewProxy(factory string, def *Definition, sequences SequenceLookup) *Proxy {
	return &Proxy{factory: factory, def: def, sequences: sequences}
}

// AddAttribute declares an attribute with an optional fixed value or an
// optional generator. Supplying both is an error and leaves the definition
// untouched. Supplying only gen declares a dynamic attribute; otherwise the
// attribute is static, with value defaulting to NoValue when not supplied.
func (p *Proxy) AddAttribute(name string, value any, gen Generator) error {
	if value != NoValue && gen != nil {
		return &AttributeDefinitionError{
			Factory:   p.factory,
			Attribute: name,
			Reason:    "both value and generator given",
		}
	}
	if gen != nil {
		p.def.AppendAttribute(NewDynamic(name, gen))
		return nil
	}
	p.def.AppendAttribute(NewStatic(name, value))
	return nil
}

// Set declares a static attribute with a fixed value.
func (p *Proxy) Set(name string, value any) {
	p.def.AppendAttribute(NewStatic(name, value))
}

// Lazy declares a dynamic attribute computed by gen on every build.
func (p *Proxy) Lazy(name string, gen Generator) {
	p.def.AppendAttribute(NewDynamic(name, gen))
}

// Association declares an association attribute. The "factory" key of opts
// selects the target factory and is consumed here; the target defaults to
// name. Whether the target exists is checked by the registry at build time,
// never here.
func (p *Proxy) Association(name string, opts Options) {
	p.def.AppendAttribute(NewAssociation(name, opts))
}

// SequenceAttr declares a factory-local sequence starting at start and a
// dynamic attribute drawing from it on every build. The sequence is not
// registered globally; it is equivalent to a global sequence referenced by
// exactly one factory.
func (p *Proxy) SequenceAttr(name string, start int64, fn SequenceFunc) {
	seq := NewSequence(start, fn)
	p.def.AppendAttribute(NewDynamic(name, seq.generator()))
}

// AliasedAs records an additional registry lookup name for the owning
// factory. Side effect only; the attribute list is untouched.
func (p *Proxy) AliasedAs(name string) {
	p.def.RecordAlias(name)
}

// AfterBuild appends cb to the after-build callback list.
func (p *Proxy) AfterBuild(cb Callback) {
	p.def.AppendCallback(AfterBuild, cb)
}

// AfterCreate appends cb to the after-create callback list.
func (p *Proxy) AfterCreate(cb Callback) {
	p.def.AppendCallback(AfterCreate, cb)
}

// AfterStub appends cb to the after-stub callback list.
func (p *Proxy) AfterStub(cb Callback) {
	p.def.AppendCallback(AfterStub, cb)
}

// Declare resolves a terse, unqualified declaration. args may carry at most
// one value and one Generator.
//
// With no args the call is ambiguous and resolves in two branches:
//  1. a global sequence registered under name turns it into a dynamic
//     attribute drawing from that sequence;
//  2. otherwise it is association shorthand, target factory = name.
//
// With a value or generator the call is always a plain attribute
// declaration, even when a global sequence of the same name exists.
func (p *Proxy) Declare(name string, args ...any) error {
	c := Call{Op: name}
	for _, arg := range args {
		switch v := arg.(type) {
		case Generator:
			if c.Generator != nil {
				return p.tooManyArgs(name)
			}
			c.Generator = v
		case func(*BuildContext) (any, error):
			if c.Generator != nil {
				return p.tooManyArgs(name)
			}
			c.Generator = v
		default:
			if c.HasValue {
				return p.tooManyArgs(name)
			}
			c.Value = v
			c.HasValue = true
		}
	}
	return p.declare(c)
}

func (p *Proxy) tooManyArgs(name string) error {
	return &AttributeDefinitionError{
		Factory:   p.factory,
		Attribute: name,
		Reason:    "at most one value and one generator may be given",
	}
}

// declare implements the two-branch disambiguation rule for a call whose
// name matched no known operation.
func (p *Proxy) declare(c Call) error {
	if !c.HasValue && c.Generator == nil {
		if p.sequences != nil {
			if seq, ok := p.sequences.Sequence(c.Op); ok {
				p.Lazy(c.Op, seq.generator())
				return nil
			}
		}
		p.Association(c.Op, c.Options)
		return nil
	}
	value := any(NoValue)
	if c.HasValue {
		value = c.Value
	}
	return p.AddAttribute(c.Op, value, c.Generator)
}

// Call is one recorded declaration-style invocation against the proxy. It is
// the wire form definition loaders emit: Op carries the invoked name, the
// remaining fields carry the arguments relevant to that operation.
type Call struct {
	// Op is the invoked name: either a known operation from the dispatch
	// table or, for unqualified declarations, the attribute name itself.
	Op string
	// Name is the first argument of table operations (attribute, alias or
	// sequence name).
	Name string
	// Value and HasValue carry an explicit fixed value. HasValue separates a
	// declared nil from no value at all.
	Value    any
	HasValue bool
	// Generator carries an explicit deferred computation.
	Generator Generator
	// Options carries an association's configuration bag.
	Options Options
	// Start and SeqFn configure a factory-local sequence.
	Start int64
	SeqFn SequenceFunc
	// Callback carries a lifecycle hook registration.
	Callback Callback
}

// opTable maps known operation names to their proxy methods. Any op outside
// the table is routed through the unqualified-declaration path; there is no
// other fallthrough, so an operation name can never be shadowed silently.
var opTable = map[string]func(p *Proxy, c Call) error{
	"attribute": func(p *Proxy, c Call) error {
		value := any(NoValue)
		if c.HasValue {
			value = c.Value
		}
		return p.AddAttribute(c.Name, value, c.Generator)
	},
	"set": func(p *Proxy, c Call) error {
		p.Set(c.Name, c.Value)
		return nil
	},
	"lazy": func(p *Proxy, c Call) error {
		p.Lazy(c.Name, c.Generator)
		return nil
	},
	"association": func(p *Proxy, c Call) error {
		p.Association(c.Name, c.Options)
		return nil
	},
	"sequence": func(p *Proxy, c Call) error {
		start := c.Start
		if start == 0 {
			start = DefaultSequenceStart
		}
		p.SequenceAttr(c.Name, start, c.SeqFn)
		return nil
	},
	"aliased_as": func(p *Proxy, c Call) error {
		p.AliasedAs(c.Name)
		return nil
	},
	"after_build": func(p *Proxy, c Call) error {
		p.AfterBuild(c.Callback)
		return nil
	},
	"after_create": func(p *Proxy, c Call) error {
		p.AfterCreate(c.Callback)
		return nil
	},
	"after_stub": func(p *Proxy, c Call) error {
		p.AfterStub(c.Callback)
		return nil
	},
}

// Apply dispatches one recorded call. Known operation names go straight to
// their methods; anything else is an attribute declaration whose name is the
// op itself, resolved by the two-branch rule in declare.
func (p *Proxy) Apply(c Call) error {
	if fn, ok := opTable[c.Op]; ok {
		return fn(p, c)
	}
	return p.declare(c)
}
