// eifview - EIF trace log viewer
//
// eifview loads EIF trace logs, filters their lines by keyword, period and
// subsystem, and detects trigger-report sequences per item.
package main

import (
	"os"

	"github.com/eif-viewer/backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
