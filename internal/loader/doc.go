// Package loader discovers Mykefiles and imports their tasks into a
// registry.
//
//   - loader.go: the Loader, file imports and source selection
//   - module.go: dotted module names, Go module providers and remote
//     modules downloaded into the modules directory
//   - locate.go: Mykefile lookup across search paths
//
// Lua files (Mykefile, *.lua, anything without an extension) are
// evaluated by luasrc; *.yaml and *.yml files by yamlsrc.
package loader
