// Package dispatch receives persistent condition updates at the fixed
// dispatch address and routes them to application handlers by name.
//
// The Router only decodes and forwards; what an update means is decided by
// the Handler it was built with, typically a Mux keyed by registration name.
package dispatch
