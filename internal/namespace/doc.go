// Package namespace models the reflection namespaces gcint bridges and the
// binding table they are republished into.
//
//   - [Namespace]: attribute-style lookup over a scope (genie, ROOT, ...)
//   - [Lazy]: a namespace whose members appear on first lookup
//   - [Table]: the caller-owned name -> object bindings
//
// # Example
//
//	ns := namespace.NewLazy("genie", registry)
//	cls, err := ns.Lookup("KNOHadronization")
//	names := ns.Members() // now includes "KNOHadronization"
//
// # Thread Safety
//
// [Lazy] is safe for concurrent use. [Table] is a plain map and is not.
package namespace
