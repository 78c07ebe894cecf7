// Package fabrik is a declarative builder for test-data factories: reusable
// templates describing how to populate an instance's attributes.
//
// A factory is defined once, by running a declaration body against a
// restricted [Proxy], and materialized many times under one of three
// strategies: Build (in memory), Create (persisted through a [Saver]) or
// Stub (in memory with a faked ID). The declaration body only records
// attribute strategies; nothing is evaluated until an instance is built.
//
//	type User struct {
//		ID    int64
//		Name  string
//		Email string `fabrik:"email"`
//	}
//
//	fabrik.DefineSequence("email", 1, func(n int64) any {
//		return fmt.Sprintf("person%d@example.com", n)
//	})
//
//	fabrik.Define("user", User{}, func(f *fabrik.Proxy) {
//		f.Set("name", "Billy Idol")
//		f.Declare("email") // draws from the global sequence
//	})
//
//	fabrik.Define("post", Post{}, func(f *fabrik.Proxy) {
//		f.SequenceAttr("code", 5, nil)
//		f.Declare("author") // association shorthand, builds the "author" factory
//		f.AfterBuild(func(bc *fabrik.BuildContext, v any) error {
//			v.(*Post).Slug = slugify(v.(*Post).Title)
//			return nil
//		})
//	})
//
//	user, err := fabrik.BuildAs[*User](ctx, "user", fabrik.Options{"name": "Ada"})
//
// Attributes come in three variants: static values fixed at definition time,
// dynamic values computed by a [Generator] per build, and associations that
// build another factory under the parent's strategy. Sequences are
// monotonically increasing counters, either registered globally and shared
// across factories or declared locally inside one body.
//
// An unqualified declaration such as f.Declare("email") resolves in two
// branches: a global sequence registered under that name wins, otherwise the
// call is association shorthand. Explicit values or generators always beat
// the sequence lookup.
//
// Factory definitions can also be loaded from HCL files through the hclload
// subpackage, and created instances can be recorded to a SQL database through
// the persist subpackage.
package fabrik
