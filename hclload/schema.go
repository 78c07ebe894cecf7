package hclload

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/fabrikgo/fabrik"
)

// fileSchema is the top-level shape of a definition file: any number of
// global sequence blocks and factory blocks.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "sequence", LabelNames: []string{"name"}},
		{Type: "factory", LabelNames: []string{"name"}},
	},
}

var sequenceSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "start"},
		{Name: "format"},
	},
}

var factorySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "aliases"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "set"},
		{Type: "sequence", LabelNames: []string{"name"}},
		{Type: "association", LabelNames: []string{"name"}},
		{Type: "declare", LabelNames: []string{"name"}},
	},
}

var associationSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "factory"},
		{Name: "options"},
	},
}

// emptySchema rejects any content; declare blocks carry only their label.
var emptySchema = &hcl.BodySchema{}

// sequenceDef is a decoded sequence block.
type sequenceDef struct {
	name  string
	start int64
	fn    fabrik.SequenceFunc
}

// factoryDef is a decoded factory block: the aliases plus the ordered stream
// of declaration calls its body replays through a proxy.
type factoryDef struct {
	name    string
	aliases []string
	calls   []fabrik.Call
}

func decodeSequence(block *hcl.Block, defaultStart int64) (sequenceDef, error) {
	content, diags := block.Body.Content(sequenceSchema)
	if diags.HasErrors() {
		return sequenceDef{}, diags
	}

	def := sequenceDef{name: block.Labels[0], start: defaultStart}
	if attr, ok := content.Attributes["start"]; ok {
		if diags := gohcl.DecodeExpression(attr.Expr, nil, &def.start); diags.HasErrors() {
			return sequenceDef{}, diags
		}
	}
	if attr, ok := content.Attributes["format"]; ok {
		var format string
		if diags := gohcl.DecodeExpression(attr.Expr, nil, &format); diags.HasErrors() {
			return sequenceDef{}, diags
		}
		def.fn = func(n int64) any { return fmt.Sprintf(format, n) }
	}
	return def, nil
}

func decodeFactory(block *hcl.Block, defaultStart int64) (factoryDef, error) {
	content, diags := block.Body.Content(factorySchema)
	if diags.HasErrors() {
		return factoryDef{}, diags
	}

	def := factoryDef{name: block.Labels[0]}
	if attr, ok := content.Attributes["aliases"]; ok {
		if diags := gohcl.DecodeExpression(attr.Expr, nil, &def.aliases); diags.HasErrors() {
			return factoryDef{}, diags
		}
	}

	// content.Blocks preserves source order, which is the declaration order
	// the definition must keep.
	for _, b := range content.Blocks {
		switch b.Type {
		case "set":
			calls, err := decodeSet(b)
			if err != nil {
				return factoryDef{}, err
			}
			def.calls = append(def.calls, calls...)
		case "sequence":
			sd, err := decodeSequence(b, defaultStart)
			if err != nil {
				return factoryDef{}, err
			}
			def.calls = append(def.calls, fabrik.Call{
				Op:    "sequence",
				Name:  sd.name,
				Start: sd.start,
				SeqFn: sd.fn,
			})
		case "association":
			call, err := decodeAssociation(b)
			if err != nil {
				return factoryDef{}, err
			}
			def.calls = append(def.calls, call)
		case "declare":
			if _, diags := b.Body.Content(emptySchema); diags.HasErrors() {
				return factoryDef{}, diags
			}
			def.calls = append(def.calls, fabrik.Call{Op: b.Labels[0]})
		}
	}
	return def, nil
}

// decodeSet turns a set block into one static declaration per attribute, in
// source order.
func decodeSet(block *hcl.Block) ([]fabrik.Call, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	calls := make([]fabrik.Call, 0, len(attrs))
	for _, attr := range sortAttributes(attrs) {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		calls = append(calls, fabrik.Call{
			Op:       "set",
			Name:     attr.Name,
			Value:    native,
			HasValue: true,
		})
	}
	return calls, nil
}

func decodeAssociation(block *hcl.Block) (fabrik.Call, error) {
	content, diags := block.Body.Content(associationSchema)
	if diags.HasErrors() {
		return fabrik.Call{}, diags
	}

	opts := fabrik.Options{}
	if attr, ok := content.Attributes["options"]; ok {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fabrik.Call{}, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return fabrik.Call{}, fmt.Errorf("association %q options: %w", block.Labels[0], err)
		}
		m, ok := native.(map[string]any)
		if !ok {
			return fabrik.Call{}, fmt.Errorf("association %q: options must be an object, got %T", block.Labels[0], native)
		}
		for k, v := range m {
			opts[k] = v
		}
	}
	if attr, ok := content.Attributes["factory"]; ok {
		var target string
		if diags := gohcl.DecodeExpression(attr.Expr, nil, &target); diags.HasErrors() {
			return fabrik.Call{}, diags
		}
		// The core consumes and strips the factory key at definition time.
		opts["factory"] = target
	}
	return fabrik.Call{Op: "association", Name: block.Labels[0], Options: opts}, nil
}

// sortAttributes orders a body's attributes by source position; HCL hands
// them back as a map.
func sortAttributes(attrs hcl.Attributes) []*hcl.Attribute {
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Range.Start.Byte < out[j].Range.Start.Byte
	})
	return out
}
