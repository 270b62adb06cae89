package main

import "github.com/appcompat/appcompat/cmd/appcompat"

func main() { appcompat.ExecuteCtl() }
