package main

import (
	"github.com/spf13/cobra"

	"github.com/zostay/go-mailparse/tools/hdrdump/cmd"
)

func main() {
	err := cmd.Execute()
	cobra.CheckErr(err)
}
