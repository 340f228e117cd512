// Package main provides the command-line interface for Keron.
package main

func main() {
	Execute()
}
