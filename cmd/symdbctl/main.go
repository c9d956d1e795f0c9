// Command symdbctl inspects and maintains symbol database files.
package main

func main() {
	execute()
}
