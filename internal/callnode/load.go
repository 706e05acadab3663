package callnode

// Load resolves a single CallNode's stored result (spec.md §4.7's
// `accessor.load((call_node, image.hash))`). call.Function already names
// which dependency produced the node, so a driver closing over the
// resolved dependency image map needs nothing further in the signature.
type Load func(call *CallNode) (any, error)
