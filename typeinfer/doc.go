// Package typeinfer turns Python type-annotation text into OpenAPI schema
// fragments without evaluating any code.
//
// Resolution is a fixed-precedence pipeline: literal-enum detection, then
// optional/nullable unwrapping, then union flattening and oneOf/anyOf
// composition, then primitive/container mapping, then bare model-reference
// extraction, then the string fallback. The precedence order is load-bearing;
// reordering it changes observable results.
//
// Model-reference detection is a deliberately approximate heuristic (a
// capitalized-identifier scan over unparsed annotation text) and can misfire
// on incidental capitalized words. Malformed input never raises: anything
// unresolvable degrades to {type: string}.
package typeinfer
