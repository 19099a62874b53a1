// Command pipegen writes make files for CAVS sequencing pipelines.
package main

import "github.com/cavspipes/pipegen/pkg/cli"

func main() {
	cli.Execute()
}
