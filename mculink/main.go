// The mculink command demonstrates and inspects message channel sessions.
package main

import "github.com/sarchlab/mculink/mculink/cmd"

func main() {
	cmd.Execute()
}
