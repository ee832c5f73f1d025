package main

import (
	"os"

	kazitrustcmder "github.com/kazitrust/kazitrust/cmd/kazitrust"
)

func main() {
	cmd := kazitrustcmder.NewKazitrustCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
