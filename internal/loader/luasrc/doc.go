// Package luasrc evaluates Lua Mykefiles with an embedded gopher-lua
// interpreter.
//
// A Mykefile sees a global "myke" table (also available through
// require("myke")) that registers tasks and exposes the shell, file and
// output helpers:
//
//	local myke = require("myke")
//
//	myke.task{
//	  name = "greet",
//	  params = { name = "world" },
//	  run = function(args) myke.echo.text("hi " .. args.name) end,
//	}
//
//	myke.shell{ name = "test", run = function() return "go test ./..." end }
//
// Files:
//   - runtime.go: the Runtime owning the Lua state, file loading and calls
//   - bridge.go: value conversion between Lua and Go
//   - errors.go: Go errors carried through Lua as userdata
//   - decl.go: task, parameter and shell option declarations
//   - api.go, api_io.go: the myke module
//
// gopher-lua states are not goroutine-safe. A Runtime and every task it
// registers must be used from one goroutine at a time.
package luasrc
