// Command dabiro is a database administration CLI for MySQL/MariaDB,
// PostgreSQL and SQLite.
package main

import (
	"os"

	"github.com/leapstack-labs/dabiro/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
