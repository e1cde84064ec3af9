// Package main provides the entry point for rosso-cli.
//
// rosso-cli sends commands to rosso-server, either one command given on the
// command line or interactively:
//
//	rosso-cli -s 127.0.0.1:6379 SET greeting hello
//	rosso-cli -a secret
package main
