// Command convert turns a configurator export into product list artifacts
// without running the web server.
//
//	convert setting.xlsx -o out/ -a presentation,order-import
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/productlist/internal/core"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
