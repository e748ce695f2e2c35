package main

import "github/chapool/custody-signer/cmd"

func main() {
	cmd.Execute()
}
