// Package myke is the library for compiled Mykefiles: Go programs that
// declare tasks in a Registry and hand it to Main.
//
//	func main() {
//		reg := myke.New()
//		reg.Add("hello", func(ctx context.Context, args myke.Args) error {
//			_, err := myke.Sh(ctx, "echo hello "+args.String("name"))
//			return err
//		}, myke.WithParams(myke.Param{Name: "name", Default: "world"}))
//		myke.Main(reg)
//	}
//
// Tasks of the registry are merged with the ones found in Mykefiles, so
// the compiled program accepts every myke flag.
package myke
