// Package gocc provides a uniform, statically resolved operation vocabulary
// over structurally different container backends.
//
// Hash maps, ordered maps, flat buffers, linked lists and priority queues all
// answer the same logical operations — query, insert, remove, iterate, manage
// memory — but disagree on almost everything else: stable node addresses
// versus relocatable slots, sorted versus unordered membership, fixed versus
// growable storage. Gocc reconciles them behind one precise contract with no
// runtime dispatch: every operation is a generic function (or a method on the
// concrete backend) whose implementation is selected at compile time from the
// container's concrete type. A backend that does not advertise a capability
// fails to compile for operations outside that capability.
//
// # Capabilities
//
// Backends implement subsets of the capability interfaces:
//
//   - Keyed: entry-based keyed access with stable element addresses
//   - Handled: entry-based keyed access through stable opaque handles,
//     for backends whose storage relocates elements on growth
//   - Sequence: push/pop/front/back positional access
//   - Splicer: relocation of elements between compatible containers
//   - Priority: heap-ordered access with key reposition operations
//   - Iterable, Bounded: forward/reverse traversal and bounded sub-ranges
//   - Managed, State: storage discipline, teardown, and introspection
//
// The reference backends live in the buffer, ordmap, handlemap, list and
// pqueue packages. The snapshot package checkpoints container contents to an
// io.Writer.
//
// # Entries and Handles
//
// A keyed query yields an Entry: Occupied with a live reference, or Vacant
// with an insertion slot. Entries chain through modify operations and are
// consumed by a terminal operation:
//
//	v := gocc.EntryOf[string, int](m, "hits").
//	    AndModify(func(n *int) { *n++ }).
//	    OrInsert(1)
//
// References and entries are valid only until the next mutating call on the
// same container. Containers that relocate elements on growth expose the same
// state machine through HandleEntry, which re-resolves a stable Handle at each
// use instead of retaining a raw reference.
//
// # Dispatch cost
//
// Operations instantiated on a concrete backend type monomorphize to direct
// calls. Entry and HandleEntry values carry a small interface to their host
// container so that chained operations stay a single expression; that is one
// pointer indirection per chained call, the documented tradeoff of this
// design in Go.
//
// # Concurrency
//
// Containers are single-threaded. Concurrent mutation of one container
// requires external locking owned entirely by the caller.
package gocc
