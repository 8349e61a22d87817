// Command ewfacquire streams a raw device or image file into a chunked,
// compressed, CRC-protected EWF segment chain.
package main

import "github.com/hoyt-harness/libewf/cmd/ewfacquire/cmd"

func main() {
	cmd.Execute()
}
