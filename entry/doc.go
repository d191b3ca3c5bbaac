// Package entry implements the entry-point logic for a webhook receiver or any
// other HTTP service embedding this library, including opinionated defaults for
// logging and tracing.
//
// Example usage:
//
//	func main() {
//		app := entry.NewApplication("my-receiver")
//		defer app.Stop()
//
//		app.Log().Info("Doing some setup")
//		if err := doSomeSetup(); err != nil {
//			app.Fail("Setup failed", err)
//		}
//
//		h := &somethingThatImplementsHttpHandler{}
//
//		entry.RunServer(app, h, "", 5000)
//	}
package entry
