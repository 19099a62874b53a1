// Package core holds the error and status types shared by the pipeline
// engine, the generators and the CLI.
package core
