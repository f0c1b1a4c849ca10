// Command biblio manages library records from the command line.
package main

import (
	"os"

	"github.com/mesh-intelligence/biblio/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
