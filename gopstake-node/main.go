// GopStake node implementation.
package main

import (
	"github.com/cryptogopniks/GopStake/gopstake-node/cmd"
)

func main() {
	cmd.Execute()
}
