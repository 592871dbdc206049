package main

import "github.com/dbsmedya/erdsql/cmd/erdsql/cmd"

func main() {
	cmd.Execute()
}
