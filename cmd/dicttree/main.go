package main

import "github.com/dbsmedya/dicttree/cmd/dicttree/cmd"

func main() {
	cmd.Execute()
}
