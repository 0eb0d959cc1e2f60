package main

import "github.com/robert-crandall/journal-app-sub006/cmd/lq/root"

func main() {
	root.Execute()
}
