// Package relation holds the vocabulary shared by every relation kind:
// identifier components and their include/quote policies, the declared and
// observed inputs a comparison starts from, change actions, and the registry
// that maps a materialization kind to its config model.
//
// Concrete kinds live in sub-packages (for example relation/dynamictable) and
// register themselves from init().
package relation
